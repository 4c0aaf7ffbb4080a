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

// Package cltype describes the closed set of OpenCL scalar and vector
// types the kernel emitter can produce, along with each type's textual
// spelling and zero literal.
package cltype

import "fmt"

// Type is an OpenCL scalar or vector type descriptor. The zero Type is
// invalid; use one of the exported constructors or constants below.
type Type struct {
	name string
	zero string
}

// Name returns the OpenCL type spelling, e.g. "float4".
func (t Type) Name() string { return t.name }

// ZeroLiteral returns an expression that evaluates to this type's zero
// value, e.g. "(float4)(0.0f, 0.0f, 0.0f, 0.0f)".
func (t Type) ZeroLiteral() string { return t.zero }

func (t Type) String() string { return t.name }

// IsValid reports whether t was produced by this package rather than
// being the zero Type.
func (t Type) IsValid() bool { return t.name != "" }

var (
	Float   = Type{"float", "0.0f"}
	Float2  = Type{"float2", "(float2)(0.0f, 0.0f)"}
	Float3  = Type{"float3", "(float3)(0.0f, 0.0f, 0.0f)"}
	Float4  = Type{"float4", "(float4)(0.0f, 0.0f, 0.0f, 0.0f)"}
	Float8  = Type{"float8", "(float8)(0.0f)"}
	Float16 = Type{"float16", "(float16)(0.0f)"}

	Int   = Type{"int", "0"}
	Int2  = Type{"int2", "(int2)(0, 0)"}
	Int3  = Type{"int3", "(int3)(0, 0, 0)"}
	Int4  = Type{"int4", "(int4)(0, 0, 0, 0)"}

	// Complex is the scalar complex representation: two adjacent floats,
	// real then imaginary part, never an OpenCL vector builtin.
	Complex = Type{"float2", "(float2)(0.0f, 0.0f)"}

	// Pixel is the alias used for Uint8Pixel element storage, always
	// read/written through the image built-ins rather than loads/stores.
	Pixel = Type{"float4", "(float4)(0.0f, 0.0f, 0.0f, 1.0f)"}
)

// FloatVector returns the float<n> vector type for n in {1,2,3,4,8,16}.
func FloatVector(n int) (Type, error) {
	switch n {
	case 1:
		return Float, nil
	case 2:
		return Float2, nil
	case 3:
		return Float3, nil
	case 4:
		return Float4, nil
	case 8:
		return Float8, nil
	case 16:
		return Float16, nil
	default:
		return Type{}, fmt.Errorf("cltype: no float vector of width %d", n)
	}
}

// IntVector returns the int<n> vector type for n in {1,2,3,4}.
func IntVector(n int) (Type, error) {
	switch n {
	case 1:
		return Int, nil
	case 2:
		return Int2, nil
	case 3:
		return Int3, nil
	case 4:
		return Int4, nil
	default:
		return Type{}, fmt.Errorf("cltype: no int vector of width %d", n)
	}
}
