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
	"github.com/stretchr/testify/require"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
)

func TestCLTypeSmallTensor(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{4}}, Element: addressing.Float32}
	got, err := addressing.CLType(addressing.SmallTensor, ft)
	require.NoError(t, err)
	assert.Equal(t, cltype.Float4, got)

	scalar := addressing.FieldType{Element: addressing.Float32}
	got, err = addressing.CLType(addressing.SmallTensor, scalar)
	require.NoError(t, err)
	assert.Equal(t, cltype.Float, got)

	// 5 points isn't a legal SmallTensor vector width.
	bad := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{5}}, Element: addressing.Float32}
	_, err = addressing.CLType(addressing.SmallTensor, bad)
	assert.Error(t, err)
}

func TestCLTypeSmallTensorComplexRequiresOnePoint(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{2}}, Element: addressing.Complex32}
	_, err := addressing.CLType(addressing.SmallTensor, ft)
	assert.Error(t, err)

	ft1 := addressing.FieldType{Element: addressing.Complex32}
	got, err := addressing.CLType(addressing.SmallTensor, ft1)
	require.NoError(t, err)
	assert.Equal(t, cltype.Complex, got)
}

func TestCLTypeTensorElementAndBigTensorAlwaysScalar(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{100}}, Element: addressing.Float32}
	for _, m := range []addressing.Mode{addressing.TensorElement, addressing.BigTensor} {
		got, err := addressing.CLType(m, ft)
		require.NoError(t, err)
		assert.Equal(t, cltype.Float, got)
	}
}

func TestValidateShapes(t *testing.T) {
	t.Parallel()

	tooDeepField := addressing.FieldType{Field: addressing.Shape{Dims: []int{1, 2, 3, 4}}}
	assert.Error(t, addressing.ValidateShapes(addressing.BigTensor, tooDeepField))

	tooDeepTensor := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{1, 2, 3}}}
	assert.Error(t, addressing.ValidateShapes(addressing.BigTensor, tooDeepTensor))

	illegalSmallTensor := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{5}}}
	assert.Error(t, addressing.ValidateShapes(addressing.SmallTensor, illegalSmallTensor))

	assert.NoError(t, addressing.ValidateShapes(addressing.BigTensor, illegalSmallTensor))
}
