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

// Package fragment implements the hyper-kernel's internal DAG of code
// fragments (spec §3, §9): InputField, UserCode, UserCodeOutput, and
// OutputField. The set is closed and modeled as a tagged sum rather
// than open-ended inheritance — each concrete type carries its own
// code-emission, name, and read-style operations.
package fragment

import "github.com/hpe-cct/cct-core-sub004/internal/addressing"

// Fragment is any node in a hyper-kernel's fragment DAG. It is a
// closed sum of *InputField, *UserCode, *UserCodeOutput and
// *OutputField; nothing outside this package may implement it.
type Fragment interface {
	// Name returns the identifier this fragment's value is known by:
	// a field name for an unbound InputField, a temporary variable
	// name for a UserCode-backed fragment.
	Name() string

	fragmentTag()
}

// Reader is the subset of fragment behavior the read-translation pass
// needs: a name, and the four read styles a template token can ask
// for. *InputField and *UserCodeOutput both implement it; InputField
// delegates to its driver when one is bound, terminating at whichever
// comes first per spec §3's "read/readNonlocal/... terminate" rule.
type Reader interface {
	Fragment

	// Read emits the expression for reading this source's full tensor
	// point ("read"/"readPoint"/"_readTensorLocal") or a single scalar
	// element in TensorElement/BigTensor mode, under the given
	// addressing mode. local selects the current work-item's
	// coordinates (_row/_column/...) versus the mutable
	// row/column/... variables a kernel body may have set for a
	// neighbor access.
	Read(mode addressing.Mode, local bool) (string, error)

	// ReadElement emits the expression for reading a single scalar
	// tensor element ("readElement"/"readScalar"/
	// "_readTensorElementLocal"/"_readTensorElementNonlocal"),
	// regardless of addressing mode.
	ReadElement(local bool) (string, error)
}

// imageArgType names the OpenCL image type a pixel-element field's
// kernel argument must declare: image3d_t for a 3-D field (layer,
// row, column), image2d_t otherwise (spec.md "2-D vs 3-D pixel-image
// handling").
func imageArgType(ft addressing.FieldType) string {
	if ft.Field.Rank() == 3 {
		return "image3d_t"
	}
	return "image2d_t"
}
