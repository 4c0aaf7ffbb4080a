// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package addressing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
)

func TestMergeSampling(t *testing.T) {
	t.Parallel()

	got, ok := addressing.MergeSampling(addressing.SampleDontCare, addressing.SampleClampToEdge)
	assert.True(t, ok)
	assert.Equal(t, addressing.SampleClampToEdge, got)

	got, ok = addressing.MergeSampling(addressing.SampleWrap, addressing.SampleDontCare)
	assert.True(t, ok)
	assert.Equal(t, addressing.SampleWrap, got)

	got, ok = addressing.MergeSampling(addressing.SampleClampToZero, addressing.SampleClampToZero)
	assert.True(t, ok)
	assert.Equal(t, addressing.SampleClampToZero, got)

	_, ok = addressing.MergeSampling(addressing.SampleClampToEdge, addressing.SampleWrap)
	assert.False(t, ok)
}

func TestCLKFlag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CLK_ADDRESS_CLAMP_TO_EDGE", addressing.SampleClampToEdge.CLKFlag())
	assert.Equal(t, "CLK_ADDRESS_CLAMP", addressing.SampleClampToZero.CLKFlag())
	assert.Equal(t, "CLK_ADDRESS_REPEAT", addressing.SampleWrap.CLKFlag())
	assert.Equal(t, "CLK_ADDRESS_NONE", addressing.SampleDontCare.CLKFlag())
}
