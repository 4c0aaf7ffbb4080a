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

// InputField is a hyper-kernel input slot. With no driver bound, it
// names a kernel argument (`_in_field_<index>`) and its reads bottom
// out in a buffer-indexing expression. Once Bind is called, every
// name/read operation forwards to the driver instead — this is how
// the merger re-homes a sink's input onto the source's computed
// output without touching the sink's UserCode bodies.
type InputField struct {
	Index     int
	FieldType addressing.FieldType
	CLType    cltype.Type
	Constant  bool

	driver Reader
	bound  bool
}

var _ Reader = (*InputField)(nil)

func (f *InputField) fragmentTag() {}

// Name implements Fragment.
func (f *InputField) Name() string {
	if f.bound {
		return f.driver.Name()
	}
	return fmt.Sprintf("_in_field_%d", f.Index)
}

// Bind sets this InputField's driver, one-shot: calling Bind twice is
// an internal error, matching spec §3's "setting drivingInput is
// one-shot (re-binding is forbidden)".
func (f *InputField) Bind(driver Reader) error {
	if f.bound {
		return fmt.Errorf("fragment: InputField %d already bound, rebinding is forbidden", f.Index)
	}
	f.driver = driver
	f.bound = true
	return nil
}

// Bound reports whether Bind has been called.
func (f *InputField) Bound() bool { return f.bound }

// Driver returns the bound driver, or nil if unbound.
func (f *InputField) Driver() Reader { return f.driver }

// IsConstant reports the constant flag, propagated through any chain
// of wrapping InputFields per spec §3.
func (f *InputField) IsConstant() bool {
	if f.bound {
		if inner, ok := f.driver.(*InputField); ok {
			return f.Constant || inner.IsConstant()
		}
	}
	return f.Constant
}

// Read implements Reader.
func (f *InputField) Read(mode addressing.Mode, local bool) (string, error) {
	if f.bound {
		return f.driver.Read(mode, local)
	}
	if mode == addressing.SmallTensor {
		return layout.ReadTensor(f.FieldType, f.CLType, f.Name(), local)
	}
	return layout.ReadElement(f.FieldType, f.CLType, f.Name(), local)
}

// ReadElement implements Reader.
func (f *InputField) ReadElement(local bool) (string, error) {
	if f.bound {
		return f.driver.ReadElement(local)
	}
	return layout.ReadElement(f.FieldType, f.CLType, f.Name(), local)
}

// ArgDecl emits this input's kernel-argument declaration. It is only
// meaningful for an unbound InputField; a bound one contributes no
// argument of its own (its driver's UserCode already owns whatever
// arguments it needs).
func (f *InputField) ArgDecl() string {
	if f.FieldType.Element == addressing.Uint8Pixel {
		return fmt.Sprintf("__read_only %s %s", imageArgType(f.FieldType), f.Name())
	}
	if f.Constant {
		return fmt.Sprintf("__global const %s *%s", f.CLType.Name(), f.Name())
	}
	return fmt.Sprintf("__global const %s *%s", f.CLType.Name(), f.Name())
}
