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

package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
	"github.com/hpe-cct/cct-core-sub004/internal/layout"
)

func TestFieldOffsetCollapsesUnitColumnStride(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Field: addressing.Shape{Dims: []int{10, 10}}, Element: addressing.Float32}
	assert.Equal(t, "row * f_rowStride + column", layout.FieldOffset(ft, "f", false))
	assert.Equal(t, "_row * f_rowStride + _column", layout.FieldOffset(ft, "f", true))
}

func TestFieldOffsetRank0(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Element: addressing.Float32}
	assert.Equal(t, "0", layout.FieldOffset(ft, "f", false))
}

func TestFieldOffsetRank3IncludesLayer(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Field: addressing.Shape{Dims: []int{2, 10, 10}}, Element: addressing.Float32}
	got := layout.FieldOffset(ft, "f", false)
	assert.Contains(t, got, "layer * f_layerStride")
	assert.Contains(t, got, "row * f_rowStride")
	assert.Contains(t, got, "column")
}

func TestReadElementFloat32(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Field: addressing.Shape{Dims: []int{10, 10}}, Element: addressing.Float32}
	got, err := layout.ReadElement(ft, cltype.Float, "f", true)
	require.NoError(t, err)
	assert.Equal(t, "f[_row * f_rowStride + _column]", got)
}

func TestReadElementComplex(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Element: addressing.Complex32}
	got, err := layout.ReadElement(ft, cltype.Complex, "f", true)
	require.NoError(t, err)
	assert.Equal(t, "(float2)(f[0], f[0 + f_partStride])", got)
}

func TestReadElementPixelUsesImageBuiltin(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Field: addressing.Shape{Dims: []int{10, 10}}, Element: addressing.Uint8Pixel}
	got, err := layout.ReadElement(ft, cltype.Pixel, "f", true)
	require.NoError(t, err)
	assert.Equal(t, "read_imagef(f, sampler, (int2)(_column, _row))", got)
}

func TestReadTensorPacksVectorLoad(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{4}}, Element: addressing.Float32}
	got, err := layout.ReadTensor(ft, cltype.Float4, "f", true)
	require.NoError(t, err)
	assert.Equal(t, "(float4)(f[0], f[0 + 1 * f_tensorStride], f[0 + 2 * f_tensorStride], f[0 + 3 * f_tensorStride])", got)
}

func TestWriteTensorUnpacksVectorStore(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Tensor: addressing.Shape{Dims: []int{2}}, Element: addressing.Float32}
	got, err := layout.WriteTensor(ft, cltype.Float2, "f", "v", true)
	require.NoError(t, err)
	assert.Equal(t, "f[0] = (v).x; f[0 + 1 * f_tensorStride] = (v).y;", got)
}

func TestWriteElementComplexWritesBothParts(t *testing.T) {
	t.Parallel()

	ft := addressing.FieldType{Element: addressing.Complex32}
	got, err := layout.WriteElement(ft, cltype.Complex, "f", "v", true)
	require.NoError(t, err)
	assert.Equal(t, "f[0] = (v).x; f[0 + f_partStride] = (v).y;", got)
}
