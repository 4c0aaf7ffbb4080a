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

package cltype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
)

func TestFloatVector(t *testing.T) {
	t.Parallel()

	want := map[int]cltype.Type{
		1:  cltype.Float,
		2:  cltype.Float2,
		3:  cltype.Float3,
		4:  cltype.Float4,
		8:  cltype.Float8,
		16: cltype.Float16,
	}
	for n, typ := range want {
		got, err := cltype.FloatVector(n)
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := cltype.FloatVector(5)
	assert.Error(t, err)
}

func TestIntVector(t *testing.T) {
	t.Parallel()

	want := map[int]cltype.Type{
		1: cltype.Int,
		2: cltype.Int2,
		3: cltype.Int3,
		4: cltype.Int4,
	}
	for n, typ := range want {
		got, err := cltype.IntVector(n)
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := cltype.IntVector(8)
	assert.Error(t, err)
}

func TestTypeZeroLiteralAndName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "float4", cltype.Float4.Name())
	assert.Equal(t, "(float4)(0.0f, 0.0f, 0.0f, 0.0f)", cltype.Float4.ZeroLiteral())
	assert.True(t, cltype.Float.IsValid())
	assert.False(t, cltype.Type{}.IsValid())
}
