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

package fragment

import (
	"fmt"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
	"github.com/hpe-cct/cct-core-sub004/internal/layout"
)

// OutputField is the DAG root for one hyper-kernel output: it emits
// the kernel argument declaration and the final write statement that
// stores the driving UserCodeOutput's temporary into the field's
// backing buffer (spec §3, §4.6).
type OutputField struct {
	FieldType   addressing.FieldType
	GlobalIndex int
	CLType      cltype.Type
	Driving     *UserCodeOutput
}

var _ Fragment = (*OutputField)(nil)

func (f *OutputField) fragmentTag() {}

// Name implements Fragment, naming the kernel argument.
func (f *OutputField) Name() string {
	return fmt.Sprintf("_out_field_%d", f.GlobalIndex)
}

// ArgDecl emits this output's kernel-argument declaration.
func (f *OutputField) ArgDecl() string {
	if f.FieldType.Element == addressing.Uint8Pixel {
		return fmt.Sprintf("__write_only %s %s", imageArgType(f.FieldType), f.Name())
	}
	return fmt.Sprintf("__global %s *%s", f.CLType.Name(), f.Name())
}

// WriteResult emits the final store of this output's computed value
// into the global buffer, for the WriteType wt left over
// after TranslateWrites masked any in-place forms. Local and deferred
// Nonlocal writes land here (in-place Nonlocal/ElementNonlocal writes
// were already fully emitted inline and contribute nothing further).
func (f *OutputField) WriteResult(mode addressing.Mode, wt WriteType) (string, error) {
	switch wt {
	case Null, Unknown:
		return "", nil
	case Nonlocal:
		if doInplaceNonlocalWrite(f.FieldType, mode) {
			return "", nil
		}
		return layout.WriteTensor(f.FieldType, f.CLType, f.Name(), f.Driving.Name(), false)
	case ElementNonlocal:
		return "", nil
	case Local:
		if mode == addressing.SmallTensor {
			return layout.WriteTensor(f.FieldType, f.CLType, f.Name(), f.Driving.Name(), true)
		}
		return layout.WriteElement(f.FieldType, f.CLType, f.Name(), f.Driving.Name(), true)
	default:
		return "", fmt.Errorf("fragment: unknown write type %v", wt)
	}
}
