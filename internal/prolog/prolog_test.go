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

package prolog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/layout"
	"github.com/hpe-cct/cct-core-sub004/internal/prolog"
)

func TestBoundsCheckOmitsAbsentDimensions(t *testing.T) {
	t.Parallel()

	scalar := addressing.FieldType{}
	assert.Equal(t, "", prolog.BoundsCheck(scalar))

	oneD := addressing.FieldType{Field: addressing.Shape{Dims: []int{10}}}
	assert.Equal(t, "if (_column >= _columns) return;", prolog.BoundsCheck(oneD))

	threeD := addressing.FieldType{Field: addressing.Shape{Dims: []int{2, 10, 10}}}
	assert.Equal(t, "if (_layer >= _layers || _row >= _rows || _column >= _columns) return;", prolog.BoundsCheck(threeD))
}

func TestWorkDefinesOmitsAbsentDimensions(t *testing.T) {
	t.Parallel()

	oneD := addressing.FieldType{Field: addressing.Shape{Dims: []int{10}}}
	defines, undefs := prolog.WorkDefines(oneD)
	assert.Contains(t, defines, "#define _columns 10")
	assert.NotContains(t, defines, "#define _rows 1")
	assert.Contains(t, undefs, "#undef _columns")
}

func TestCoordDeclsTensorElementFoldsLayerAndTensor(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{
		Field:  addressing.Shape{Dims: []int{2, 10, 10}},
		Tensor: addressing.Shape{Dims: []int{4}},
	}
	got := prolog.CoordDecls(ft, addressing.TensorElement)
	assert.Contains(t, got, "int _layer = get_global_id(2) % _layers;")
	assert.Contains(t, got, "int _tensorElement = get_global_id(2) / _layers;")
}

func TestCoordDeclsSmallTensorHasNoTensorAxis(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Field: addressing.Shape{Dims: []int{10, 10}}}
	got := prolog.CoordDecls(ft, addressing.SmallTensor)
	assert.Contains(t, got, "int _tensorElement = 0;")
	assert.Contains(t, got, "int _row = get_global_id(1);")
}

func TestFieldDefinesOmitsLayersForNonVolumeField(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Field: addressing.Shape{Dims: []int{10, 10}}, Element: addressing.Float32}
	mem := layout.New(ft, 0)
	defines, _ := prolog.FieldDefines("f", ft, mem)

	joined := ""
	for _, d := range defines {
		joined += d + "\n"
	}
	assert.NotContains(t, joined, "f_layers")
	assert.Contains(t, joined, "#define f_rows 10")
}

func TestSamplerDecl(t *testing.T) {
	t.Parallel()

	got := prolog.SamplerDecl(addressing.SampleClampToEdge)
	assert.Equal(t, "const sampler_t sampler = CLK_ADDRESS_CLAMP_TO_EDGE | CLK_FILTER_NEAREST;", got)
}
