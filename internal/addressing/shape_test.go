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

func TestShapeRankAndPoints(t *testing.T) {
	t.Parallel()

	s := addressing.Shape{Dims: []int{4, 5}}
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 20, s.Points())

	zero := addressing.Shape{}
	assert.Equal(t, 0, zero.Rank())
	assert.Equal(t, 1, zero.Points())
}

func TestShapeDimRightAligned(t *testing.T) {
	t.Parallel()

	// A 1-D shape [c] means "columns": layer and row default to 1.
	oneD := addressing.Shape{Dims: []int{10}}
	assert.Equal(t, 1, oneD.Layers())
	assert.Equal(t, 1, oneD.Rows())
	assert.Equal(t, 10, oneD.Columns())

	// A 2-D shape [r,c].
	twoD := addressing.Shape{Dims: []int{3, 10}}
	assert.Equal(t, 1, twoD.Layers())
	assert.Equal(t, 3, twoD.Rows())
	assert.Equal(t, 10, twoD.Columns())

	// A 3-D shape [l,r,c].
	threeD := addressing.Shape{Dims: []int{2, 3, 10}}
	assert.Equal(t, 2, threeD.Layers())
	assert.Equal(t, 3, threeD.Rows())
	assert.Equal(t, 10, threeD.Columns())
}

func TestFieldTypeString(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{
		Field:   addressing.Shape{Dims: []int{3, 10}},
		Tensor:  addressing.Shape{Dims: []int{4}},
		Element: addressing.Float32,
	}
	assert.Equal(t, "Field[3 10].Tensor[4].Float32", ft.String())
}
