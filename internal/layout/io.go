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

package layout

import (
	"fmt"
	"strings"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
)

// FieldOffset returns the buffer-index expression for the start of
// field point (layer, row, column) within fieldName's backing buffer,
// omitting terms for dimensions the field type doesn't have and
// collapsing any stride that happens to equal 1. local selects the
// "_layer/_row/_column" prolog variables over the plain
// "layer/row/column" ones.
func FieldOffset(ft addressing.FieldType, fieldName string, local bool) string {
	rank := ft.Field.Rank()
	if rank == 0 {
		return "0"
	}

	prefix := ""
	if local {
		prefix = "_"
	}
	m := New(ft, 0)

	var terms []string
	if rank == 3 {
		terms = append(terms, strideTerm(prefix+"layer", m.LayerStride, fieldName, "layerStride"))
	}
	if rank >= 2 {
		terms = append(terms, strideTerm(prefix+"row", m.FieldRowStride, fieldName, "rowStride"))
	}
	terms = append(terms, prefix+"column")

	return strings.Join(terms, " + ")
}

func strideTerm(indexExpr string, stride int, fieldName, strideName string) string {
	if stride == 1 {
		return indexExpr
	}
	return fmt.Sprintf("%s * %s_%s", indexExpr, fieldName, strideName)
}

// TensorOffset returns the additional offset contributed by the tensor
// element index, collapsing a unit tensor stride the same way
// FieldOffset does.
func TensorOffset(ft addressing.FieldType, fieldName string, tensorLocal bool) string {
	prefix := ""
	if tensorLocal {
		prefix = "_"
	}
	m := New(ft, 0)
	if m.TensorStride == 1 {
		return fmt.Sprintf(" + %stensorElement", prefix)
	}
	return fmt.Sprintf(" + %stensorElement * %s_tensorStride", prefix, fieldName)
}

func fullOffset(ft addressing.FieldType, fieldName string, local bool) string {
	fo := FieldOffset(ft, fieldName, local)
	if ft.Tensor.Points() <= 1 {
		return fo
	}
	return fo + TensorOffset(ft, fieldName, local)
}

// imageCoords builds the (column, row[, layer, 0]) argument list used
// by read_imagef/write_imagef, branching on whether the field is 3-D.
func imageCoords(ft addressing.FieldType, local bool) string {
	prefix := ""
	if local {
		prefix = "_"
	}
	if ft.Field.Rank() == 3 {
		return fmt.Sprintf("(int4)(%[1]scolumn, %[1]srow, %[1]slayer, 0)", prefix)
	}
	return fmt.Sprintf("(int2)(%[1]scolumn, %[1]srow)", prefix)
}

// ReadElement emits the expression that reads a single scalar tensor
// element (TensorElement/BigTensor addressing, or a one-point
// SmallTensor field) from fieldName.
func ReadElement(ft addressing.FieldType, clt cltype.Type, fieldName string, local bool) (string, error) {
	off := fullOffset(ft, fieldName, local)

	switch ft.Element {
	case addressing.Float32:
		return fmt.Sprintf("%s[%s]", fieldName, off), nil
	case addressing.Complex32:
		return fmt.Sprintf("(float2)(%s[%s], %s[%s + %s_partStride])", fieldName, off, fieldName, off, fieldName), nil
	case addressing.Uint8Pixel:
		return fmt.Sprintf("read_imagef(%s, sampler, %s)", fieldName, imageCoords(ft, local)), nil
	default:
		return "", fmt.Errorf("layout: readElement: unsupported element type %v", ft.Element)
	}
}

// siblingLoads builds n sibling scalar loads at offsets
// off, off+stride, off+2*stride, ... and wraps them as a vector
// literal of the given OpenCL type name.
func siblingLoads(typeName, fieldName, off, strideName string, n int) string {
	loads := make([]string, n)
	for i := 0; i < n; i++ {
		if i == 0 {
			loads[i] = fmt.Sprintf("%s[%s]", fieldName, off)
		} else {
			loads[i] = fmt.Sprintf("%s[%s + %d * %s_%s]", fieldName, off, i, fieldName, strideName)
		}
	}
	return fmt.Sprintf("(%s)(%s)", typeName, strings.Join(loads, ", "))
}

// ReadTensor emits the expression that reads an entire tensor point
// (SmallTensor addressing) from fieldName, packing sibling scalar
// loads into a vector literal for Float2/3/4/8/16 and a real/imaginary
// pair for complex fields.
func ReadTensor(ft addressing.FieldType, clt cltype.Type, fieldName string, local bool) (string, error) {
	points := ft.Tensor.Points()
	off := FieldOffset(ft, fieldName, local)

	switch ft.Element {
	case addressing.Float32:
		if points == 1 {
			return ReadElement(ft, clt, fieldName, local)
		}
		return siblingLoads(clt.Name(), fieldName, off, "tensorStride", points), nil
	case addressing.Complex32:
		return ReadElement(ft, clt, fieldName, local)
	case addressing.Uint8Pixel:
		return ReadElement(ft, clt, fieldName, local)
	default:
		return "", fmt.Errorf("layout: readTensor: unsupported element type %v", ft.Element)
	}
}

// WriteElement emits the statement that stores value into a single
// scalar tensor element of fieldName.
func WriteElement(ft addressing.FieldType, clt cltype.Type, fieldName, value string, local bool) (string, error) {
	off := fullOffset(ft, fieldName, local)

	switch ft.Element {
	case addressing.Float32:
		return fmt.Sprintf("%s[%s] = %s;", fieldName, off, value), nil
	case addressing.Complex32:
		return fmt.Sprintf("%s[%s] = (%s).x; %s[%s + %s_partStride] = (%s).y;",
			fieldName, off, value, fieldName, off, fieldName, value), nil
	case addressing.Uint8Pixel:
		return fmt.Sprintf("write_imagef(%s, %s, (float4)((%s).xyz, 1.0f));", fieldName, imageCoords(ft, local), value), nil
	default:
		return "", fmt.Errorf("layout: writeElement: unsupported element type %v", ft.Element)
	}
}

// WriteTensor emits the statement(s) that store an entire tensor point
// value into fieldName, unpacking a vector value into sibling scalar
// stores for Float2/3/4/8/16.
func WriteTensor(ft addressing.FieldType, clt cltype.Type, fieldName, value string, local bool) (string, error) {
	points := ft.Tensor.Points()
	off := FieldOffset(ft, fieldName, local)

	switch ft.Element {
	case addressing.Float32:
		if points == 1 {
			return WriteElement(ft, clt, fieldName, value, local)
		}
		var b strings.Builder
		components := "xyzw"
		for i := 0; i < points; i++ {
			comp := fmt.Sprintf(".s%X", i)
			if i < len(components) {
				comp = "." + string(components[i])
			}
			if i == 0 {
				fmt.Fprintf(&b, "%s[%s] = (%s)%s;", fieldName, off, value, comp)
			} else {
				fmt.Fprintf(&b, " %s[%s + %d * %s_tensorStride] = (%s)%s;", fieldName, off, i, fieldName, value, comp)
			}
		}
		return b.String(), nil
	case addressing.Complex32, addressing.Uint8Pixel:
		return WriteElement(ft, clt, fieldName, value, local)
	default:
		return "", fmt.Errorf("layout: writeTensor: unsupported element type %v", ft.Element)
	}
}

// WritePointer returns the buffer-index expression for fieldName at
// the current (layer, row, column), used by in-place non-local writes
// that bump a pointer rather than storing through a fixed index.
func WritePointer(ft addressing.FieldType, fieldName string, local bool) string {
	return fullOffset(ft, fieldName, local)
}

// WriteTensor0FieldPointer returns an expression naming the base
// address of fieldName's tensor-element-0 plane. No template form
// expands to it; partStride(@out<i>) is translated separately by
// fragment.TranslateWrites.
func WriteTensor0FieldPointer(fieldName string) string {
	return fmt.Sprintf("(&%s[0])", fieldName)
}
