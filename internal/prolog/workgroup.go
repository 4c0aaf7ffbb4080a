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

// Package prolog builds the boilerplate that surrounds a hyper-kernel
// body: the work-group parameter computation (spec §4.4), and the
// prolog/epilog/bounds-check text emitted around it (spec §4.3).
package prolog

import "github.com/hpe-cct/cct-core-sub004/internal/addressing"

// WorkGroup is the six-quantity launch geometry for one kernel: local
// and global size along each of the (up to) three OpenCL work
// dimensions, id 0 fastest-varying (column) through id 2
// slowest-varying (layer, or layer folded with tensor element in
// TensorElement mode).
type WorkGroup struct {
	Global     [3]int
	Local      [3]int
	Dimensions int
}

// Equal is value equality of all six size quantities, per spec §4.4 —
// Dimensions is derived from them and not compared separately.
func (w WorkGroup) Equal(o WorkGroup) bool {
	return w.Global == o.Global && w.Local == o.Local
}

func roundUp(mult, v int) int {
	if mult <= 0 {
		return v
	}
	return v + (mult-v%mult)%mult
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Compute derives the work-group parameters for ft under addressing
// mode m, per spec §4.4: default local sizes keyed on the workfield's
// own rank (16x16x1 for 2-D/3-D, 256x1x1 for 1-D/0-D); TensorElement
// mode folds an extra tensor axis into whichever id dimension has
// room, or packs it with the layer axis (layer-varying-fastest, per
// spec §9's resolved open question) when none does; global sizes are
// each axis rounded up to a multiple of the local size.
func Compute(ft addressing.FieldType, m addressing.Mode) WorkGroup {
	rank := ft.Field.Rank()

	var global [3]int
	global[0], global[1], global[2] = 1, 1, 1
	if rank >= 1 {
		global[0] = ft.Field.Columns()
	}
	if rank >= 2 {
		global[1] = ft.Field.Rows()
	}
	if rank >= 3 {
		global[2] = ft.Field.Layers()
	}

	dims := clamp(rank, 1, 3)

	if m == addressing.TensorElement {
		tp := ft.Tensor.Points()
		switch rank {
		case 3:
			global[2] = ft.Field.Layers() * tp
		case 2:
			global[2] = tp
			dims = 3
		case 1:
			global[1] = tp
			dims = 2
		case 0:
			global[0] = tp
			dims = 1
		}
	}

	var local [3]int
	if rank <= 1 {
		local = [3]int{256, 1, 1}
	} else {
		local = [3]int{16, 16, 1}
	}

	for i := range global {
		global[i] = roundUp(local[i], global[i])
	}

	return WorkGroup{Global: global, Local: local, Dimensions: dims}
}
