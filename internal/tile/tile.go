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

// Package tile implements the local-memory tile loader (spec §4.8):
// the standard "load an input tile into __local memory with halos
// under a border policy" code block.
package tile

import (
	"fmt"
	"strings"

	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
)

// Border selects how the tile loader handles a source coordinate that
// falls outside the field.
type Border int

const (
	BorderZero Border = iota
	BorderFull
	BorderValid
	BorderClamp
	BorderCyclic
)

func (b Border) String() string {
	switch b {
	case BorderZero:
		return "BorderZero"
	case BorderFull:
		return "BorderFull"
	case BorderValid:
		return "BorderValid"
	case BorderClamp:
		return "BorderClamp"
	case BorderCyclic:
		return "BorderCyclic"
	default:
		return fmt.Sprintf("Border(%d)", int(b))
	}
}

// Halo is the extra border loaded around a tile, in field points, on
// each of the four sides.
type Halo struct {
	Top, Right, Bottom, Left int
}

// supported reports whether Load implements b; BorderValid is declared
// by spec §4.8 as "can't happen by construction" and is rejected here
// like any other unimplemented policy (spec §7 "Unsupported border
// policy").
func supported(b Border) bool {
	switch b {
	case BorderZero, BorderFull, BorderClamp, BorderCyclic:
		return true
	default:
		return false
	}
}

// Load emits the local-tile load block for a single-input kernel: the
// __local array declaration, the strided fill loop (a nested for loop
// over tile rows and columns, stepping by the work-group size), the
// barrier, and the deferred bounds-check guard.
func Load(clt cltype.Type, halo Halo, border Border) (string, error) {
	if !supported(border) {
		return "", fmt.Errorf("tile: unsupported border policy %s", border)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "int localWidth = _localColumns + %d + %d;\n", halo.Left, halo.Right)
	fmt.Fprintf(&b, "int localHeight = _localRows + %d + %d;\n", halo.Top, halo.Bottom)
	fmt.Fprintf(&b, "__local %s localImage[localHeight][localWidth];\n", clt.Name())
	fmt.Fprintf(&b, "for (int r = _localRow; r < localHeight; r += _localRows) {\n")
	fmt.Fprintf(&b, "  for (int c = _localColumn; c < localWidth; c += _localColumns) {\n")
	fmt.Fprintf(&b, "    int readRow = _groupRow * _localRows + r - %d;\n", halo.Top)
	fmt.Fprintf(&b, "    int readColumn = _groupColumn * _localColumns + c - %d;\n", halo.Left)
	fmt.Fprintf(&b, "    if (readRow >= 0 && readRow < _rows && readColumn >= 0 && readColumn < _columns) {\n")
	fmt.Fprintf(&b, "      row = readRow; column = readColumn;\n")
	fmt.Fprintf(&b, "      localImage[r][c] = readNonlocal(@in0);\n")
	fmt.Fprintf(&b, "    } else {\n")
	fmt.Fprintf(&b, "%s", fillBlock(clt, border))
	fmt.Fprintf(&b, "    }\n")
	fmt.Fprintf(&b, "  }\n")
	fmt.Fprintf(&b, "}\n")
	fmt.Fprintf(&b, "barrier(CLK_LOCAL_MEM_FENCE);\n")
	fmt.Fprintf(&b, "if (_row >= _rows || _column >= _columns) return;")

	return b.String(), nil
}

// fillBlock emits the out-of-bounds fill for one tile cell: a zero
// fill for BorderZero/BorderFull, or a reflected/wrapped in-bounds
// read for BorderClamp/BorderCyclic, by clamping or wrapping row and
// column before reusing the same readNonlocal(@in0) token.
func fillBlock(clt cltype.Type, border Border) string {
	switch border {
	case BorderClamp:
		return fmt.Sprintf(
			"      row = min(max(readRow, 0), _rows - 1);\n"+
				"      column = min(max(readColumn, 0), _columns - 1);\n"+
				"      localImage[r][c] = readNonlocal(@in0);\n")
	case BorderCyclic:
		return fmt.Sprintf(
			"      row = ((readRow %% _rows) + _rows) %% _rows;\n"+
				"      column = ((readColumn %% _columns) + _columns) %% _columns;\n"+
				"      localImage[r][c] = readNonlocal(@in0);\n")
	default: // BorderZero, BorderFull
		return fmt.Sprintf("      localImage[r][c] = %s;\n", clt.ZeroLiteral())
	}
}
