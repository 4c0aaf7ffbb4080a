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

// Package addressing implements the three kernel addressing modes
// (SmallTensor, TensorElement, BigTensor) and the field/tensor shape
// and element-type data model they operate over.
package addressing

import "fmt"

// Shape is the size of each live dimension of a field or tensor, most
// major dimension first (layer, row, column for a field; a flat list
// of extents for a tensor). A field shape has 0-3 dimensions, a tensor
// shape has 0-2 dimensions.
type Shape struct {
	Dims []int
}

// Rank returns the number of live dimensions.
func (s Shape) Rank() int { return len(s.Dims) }

// Points returns the total element/point count, 1 for a 0-D shape.
func (s Shape) Points() int {
	n := 1
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// Dim returns the size of dimension i counting from the major side, or
// 1 if the shape doesn't have that many dimensions (so callers can
// always index layer/row/column uniformly).
func (s Shape) Dim(i int) int {
	// Dims is stored major-to-minor but a 1-D shape [c] means "columns",
	// a 2-D shape [r,c] means "rows,columns", a 3-D shape [l,r,c] means
	// "layers,rows,columns". Right-align against a 3-slot frame.
	pad := 3 - len(s.Dims)
	idx := i - pad
	if idx < 0 || idx >= len(s.Dims) {
		return 1
	}
	return s.Dims[idx]
}

// Layers, Rows, Columns are convenience accessors assuming a 3-slot
// (layer, row, column) frame.
func (s Shape) Layers() int  { return s.Dim(0) }
func (s Shape) Rows() int    { return s.Dim(1) }
func (s Shape) Columns() int { return s.Dim(2) }

// ElementType is the scalar payload stored at each tensor point.
type ElementType int

const (
	Float32 ElementType = iota
	Complex32
	Uint8Pixel
)

func (e ElementType) String() string {
	switch e {
	case Float32:
		return "Float32"
	case Complex32:
		return "Complex32"
	case Uint8Pixel:
		return "Uint8Pixel"
	default:
		return fmt.Sprintf("ElementType(%d)", int(e))
	}
}

// FieldType is the triple <fieldShape, tensorShape, elementType> that
// fully determines a field's memory layout and addressing behavior.
type FieldType struct {
	Field   Shape
	Tensor  Shape
	Element ElementType
}

func (f FieldType) String() string {
	return fmt.Sprintf("Field%v.Tensor%v.%v", f.Field.Dims, f.Tensor.Dims, f.Element)
}
