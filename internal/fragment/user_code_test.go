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

package fragment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
	"github.com/hpe-cct/cct-core-sub004/internal/fragment"
	"github.com/hpe-cct/cct-core-sub004/internal/idgen"
)

func TestUserCodeCodeIsRecomputedFromCurrentBindings(t *testing.T) {
	t.Parallel()

	in := scalarInput(0)
	uc := fragment.NewUserCode([]fragment.Reader{in}, addressing.SmallTensor, "@out0 = read(@in0);",
		[]cltype.Type{cltype.Float}, []addressing.FieldType{in.FieldType}, 1, idgen.Allocator{})
	uc.SetOutputIndex(0, 0, in.FieldType, cltype.Float)

	before, _, err := uc.Code()
	require.NoError(t, err)
	assert.Contains(t, before, "_in_field_0[0]")

	// Re-homing the input's driver changes what Code() emits on the
	// next call without rebuilding the UserCode itself.
	other := scalarInput(0)
	other.Index = 7
	require.NoError(t, in.Bind(other))

	after, _, err := uc.Code()
	require.NoError(t, err)
	assert.Contains(t, after, "_in_field_7[0]")
	assert.NotEqual(t, before, after)
}

func TestInputFieldBindIsOneShot(t *testing.T) {
	t.Parallel()

	in := scalarInput(0)
	other1 := scalarInput(1)
	other2 := scalarInput(2)

	require.NoError(t, in.Bind(other1))
	assert.Error(t, in.Bind(other2))
}

func TestUserCodeOutputRejectsNonlocalRead(t *testing.T) {
	t.Parallel()

	uc := fragment.NewUserCode(nil, addressing.SmallTensor, "", nil, nil, 1, idgen.Allocator{})
	out := uc.Output(0)

	_, err := out.Read(addressing.SmallTensor, false)
	assert.Error(t, err)

	got, err := out.Read(addressing.SmallTensor, true)
	require.NoError(t, err)
	assert.Equal(t, uc.TempName(0), got)
}

func TestNewUserCodeMintsDistinctTempNames(t *testing.T) {
	t.Parallel()

	var alloc idgen.Allocator
	alloc.Reset()
	uc := fragment.NewUserCode(nil, addressing.SmallTensor, "", nil, nil, 2, alloc)
	assert.NotEqual(t, uc.TempName(0), uc.TempName(1))
	assert.Equal(t, -1, uc.GlobalIndex(0))
}
