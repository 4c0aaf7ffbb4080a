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

package addressing

import (
	"fmt"

	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
)

// Mode fixes how each work-item maps to field points and tensor
// elements. See spec §3 for the table of valid field/tensor shapes per
// mode.
type Mode int

const (
	SmallTensor Mode = iota
	TensorElement
	BigTensor
)

func (m Mode) String() string {
	switch m {
	case SmallTensor:
		return "SmallTensor"
	case TensorElement:
		return "TensorElement"
	case BigTensor:
		return "BigTensor"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// smallTensorPointCounts is the closed set of tensor point counts that
// SmallTensor addressing may pack into a single vector register.
var smallTensorPointCounts = map[int]bool{1: true, 2: true, 3: true, 4: true, 8: true, 16: true}

// CLType chooses the OpenCL type a field of this FieldType is read or
// written as under mode m. SmallTensor packs multiple tensor points
// into one vector load/store; TensorElement and BigTensor always see
// one scalar element at a time.
func CLType(m Mode, ft FieldType) (cltype.Type, error) {
	points := ft.Tensor.Points()

	switch m {
	case SmallTensor:
		if !smallTensorPointCounts[points] {
			return cltype.Type{}, fmt.Errorf("addressing: SmallTensor requires a tensor point count in {1,2,3,4,8,16}, got %d", points)
		}
		switch ft.Element {
		case Float32:
			return cltype.FloatVector(points)
		case Complex32:
			if points != 1 {
				return cltype.Type{}, fmt.Errorf("addressing: SmallTensor complex fields must have exactly one tensor point, got %d", points)
			}
			return cltype.Complex, nil
		case Uint8Pixel:
			if points != 1 {
				return cltype.Type{}, fmt.Errorf("addressing: SmallTensor pixel fields must have exactly one tensor point, got %d", points)
			}
			return cltype.Pixel, nil
		default:
			return cltype.Type{}, fmt.Errorf("addressing: unsupported element type %v", ft.Element)
		}

	case TensorElement, BigTensor:
		switch ft.Element {
		case Float32:
			return cltype.Float, nil
		case Complex32:
			return cltype.Complex, nil
		case Uint8Pixel:
			return cltype.Pixel, nil
		default:
			return cltype.Type{}, fmt.Errorf("addressing: unsupported element type %v", ft.Element)
		}

	default:
		return cltype.Type{}, fmt.Errorf("addressing: unknown mode %v", m)
	}
}

// ValidateShapes checks the field/tensor shape legality table from
// spec §3 for mode m. SmallTensor requires a tensor point count drawn
// from the closed set; the other two modes accept any shapes.
func ValidateShapes(m Mode, ft FieldType) error {
	if ft.Field.Rank() > 3 {
		return fmt.Errorf("addressing: field shape has rank %d, must be 0-3", ft.Field.Rank())
	}
	if ft.Tensor.Rank() > 2 {
		return fmt.Errorf("addressing: tensor shape has rank %d, must be 0-2", ft.Tensor.Rank())
	}
	if m == SmallTensor && !smallTensorPointCounts[ft.Tensor.Points()] {
		return fmt.Errorf("addressing: SmallTensor requires tensor point count in {1,2,3,4,8,16}, got %d", ft.Tensor.Points())
	}
	return nil
}
