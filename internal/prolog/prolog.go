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

package prolog

import (
	"fmt"
	"strings"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/layout"
)

// Header emits the comment line identifying the addressing mode and
// global work-group geometry, per spec §4.3.
func Header(mode addressing.Mode, wg WorkGroup) string {
	return fmt.Sprintf("// addressing=%s global=(%d,%d,%d) local=(%d,%d,%d)",
		mode, wg.Global[2], wg.Global[1], wg.Global[0], wg.Local[2], wg.Local[1], wg.Local[0])
}

// SamplerDecl emits the sampler_t declaration used for image reads,
// when needsSampler is set.
func SamplerDecl(mode addressing.SamplingMode) string {
	return fmt.Sprintf("const sampler_t sampler = %s | CLK_FILTER_NEAREST;", mode.CLKFlag())
}

// CoordDecls emits the always-present coordinate declarations: the
// read-only _column/_row/_layer/_tensorElement work-item coordinates,
// the mutable layer/row/column/tensorElement variables a kernel body
// may repurpose to drive indexed reads/writes, and the
// _local*/_group* work-group-relative coordinates, per spec §4.3.
func CoordDecls(ft addressing.FieldType, mode addressing.Mode) string {
	rank := ft.Field.Rank()
	var b strings.Builder

	fmt.Fprintln(&b, "int _column = get_global_id(0);")

	var rowExpr, layerExpr, tensorExpr string
	switch {
	case rank >= 2:
		rowExpr = "get_global_id(1)"
	default:
		rowExpr = "0"
	}

	switch mode {
	case addressing.SmallTensor:
		tensorExpr = "0"
		if rank >= 3 {
			layerExpr = "get_global_id(2)"
		} else {
			layerExpr = "0"
		}
	case addressing.TensorElement:
		switch rank {
		case 3:
			layerExpr = "get_global_id(2) % _layers"
			tensorExpr = "get_global_id(2) / _layers"
		case 2:
			layerExpr = "0"
			tensorExpr = "get_global_id(2)"
		case 1:
			layerExpr = "0"
			tensorExpr = "get_global_id(1)"
		default:
			layerExpr = "0"
			tensorExpr = "get_global_id(0)"
		}
	default: // BigTensor
		tensorExpr = "0"
		if rank >= 3 {
			layerExpr = "get_global_id(2)"
		} else {
			layerExpr = "0"
		}
	}

	fmt.Fprintf(&b, "int _row = %s;\n", rowExpr)
	fmt.Fprintf(&b, "int _layer = %s;\n", layerExpr)
	fmt.Fprintf(&b, "int _tensorElement = %s;\n", tensorExpr)

	fmt.Fprintln(&b, "int layer = 0, row = 0, column = 0, tensorElement = 0;")

	fmt.Fprintln(&b, "int _localColumn = get_local_id(0);")
	if rank >= 2 {
		fmt.Fprintln(&b, "int _localRow = get_local_id(1);")
	}
	if rank >= 3 {
		fmt.Fprintln(&b, "int _localLayer = get_local_id(2);")
	}
	fmt.Fprintln(&b, "int _groupColumn = get_group_id(0);")
	if rank >= 2 {
		fmt.Fprintln(&b, "int _groupRow = get_group_id(1);")
	}
	if rank >= 3 {
		fmt.Fprintln(&b, "int _groupLayer = get_group_id(2);")
	}

	return strings.TrimRight(b.String(), "\n")
}

// BoundsCheck emits the "if out of bounds, return" guard against the
// work field's own geometry macros.
func BoundsCheck(ft addressing.FieldType) string {
	rank := ft.Field.Rank()
	var terms []string
	if rank >= 3 {
		terms = append(terms, "_layer >= _layers")
	}
	if rank >= 2 {
		terms = append(terms, "_row >= _rows")
	}
	if rank >= 1 {
		terms = append(terms, "_column >= _columns")
	}
	if len(terms) == 0 {
		return ""
	}
	return fmt.Sprintf("if (%s) return;", strings.Join(terms, " || "))
}

// WorkDefines emits the #define/#undef pair for the unprefixed work
// geometry macros (_layers/_rows/_columns/_tensorElements) the bounds
// check and coordinate decls above reference.
func WorkDefines(ft addressing.FieldType) (defines, undefs []string) {
	rank := ft.Field.Rank()
	if rank >= 3 {
		defines = append(defines, fmt.Sprintf("#define _layers %d", ft.Field.Layers()))
		undefs = append(undefs, "#undef _layers")
	}
	if rank >= 2 {
		defines = append(defines, fmt.Sprintf("#define _rows %d", ft.Field.Rows()))
		undefs = append(undefs, "#undef _rows")
	}
	if rank >= 1 {
		defines = append(defines, fmt.Sprintf("#define _columns %d", ft.Field.Columns()))
		undefs = append(undefs, "#undef _columns")
	}
	defines = append(defines, fmt.Sprintf("#define _tensorElements %d", ft.Tensor.Points()))
	undefs = append(undefs, "#undef _tensorElements")
	return defines, undefs
}

// FieldDefines emits the #define/#undef pair exposing fieldName's
// geometry constants (spec §6): F_layers is only present for a 3-D
// field (of any element type), per the #ifdef F_layers branch
// readers/writers use.
func FieldDefines(fieldName string, ft addressing.FieldType, mem layout.Memory) (defines, undefs []string) {
	add := func(suffix string, v int) {
		defines = append(defines, fmt.Sprintf("#define %s_%s %d", fieldName, suffix, v))
		undefs = append(undefs, fmt.Sprintf("#undef %s_%s", fieldName, suffix))
	}
	if ft.Field.Rank() >= 3 {
		add("layers", mem.Layers)
	}
	add("rows", mem.Rows)
	add("columns", mem.Columns)
	add("layerStride", mem.LayerStride)
	add("rowStride", mem.FieldRowStride)
	add("tensorStride", mem.TensorStride)
	add("partStride", mem.PartStride)
	add("tensorElements", ft.Tensor.Points())
	return defines, undefs
}
