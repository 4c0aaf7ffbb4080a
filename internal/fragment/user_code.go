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
	"github.com/hpe-cct/cct-core-sub004/internal/idgen"
)

// UserCode is a fragment wrapping one block of user-supplied kernel
// body text, its input fragments, and an output-index table with one
// globalIndex slot per local output (spec §3).
type UserCode struct {
	Inputs          []Reader
	Mode            addressing.Mode
	RawCode         string
	InputCLTypes    []cltype.Type
	InputFieldTypes []addressing.FieldType

	tempNames    []string
	globalIndex  []int
	outputFields []addressing.FieldType
	outputCL     []cltype.Type
}

var _ Fragment = (*UserCode)(nil)

func (u *UserCode) fragmentTag() {}

// NewUserCode builds a UserCode with outputCount output slots, minting
// one fresh temporary name per slot from alloc.
func NewUserCode(inputs []Reader, mode addressing.Mode, code string, inputCL []cltype.Type, inputFT []addressing.FieldType, outputCount int, alloc idgen.Allocator) *UserCode {
	temps := make([]string, outputCount)
	idx := make([]int, outputCount)
	for i := range temps {
		temps[i] = fmt.Sprintf("_temp%d_", alloc.Next())
		idx[i] = -1
	}
	return &UserCode{
		Inputs:          inputs,
		Mode:            mode,
		RawCode:         code,
		InputCLTypes:    inputCL,
		InputFieldTypes: inputFT,
		tempNames:       temps,
		globalIndex:     idx,
		outputFields:    make([]addressing.FieldType, outputCount),
		outputCL:        make([]cltype.Type, outputCount),
	}
}

// OutputCount returns the number of local output slots.
func (u *UserCode) OutputCount() int { return len(u.tempNames) }

// Name implements Fragment; a multi-output UserCode has no single
// name of its own, so this returns the first output's temporary.
func (u *UserCode) Name() string {
	if len(u.tempNames) == 0 {
		return ""
	}
	return u.tempNames[0]
}

// TempName returns the local variable name for output slot i.
func (u *UserCode) TempName(i int) string { return u.tempNames[i] }

// SetOutputIndex assigns the global output index for local slot i, and
// the OutputField's field/CL type so write translation can address it.
func (u *UserCode) SetOutputIndex(i, global int, ft addressing.FieldType, clt cltype.Type) {
	u.globalIndex[i] = global
	u.outputFields[i] = ft
	u.outputCL[i] = clt
}

// GlobalIndex returns the assigned global output index for slot i, or
// -1 if unassigned.
func (u *UserCode) GlobalIndex(i int) int { return u.globalIndex[i] }

// Code performs TranslateReads then TranslateWrites against the raw
// user code, using the current input bindings and output-index table.
// It is recomputed on every call rather than cached so that a merged
// kernel's rebinding of InputField drivers is always reflected — this
// is what makes kernelCode a pure function of the *current* DAG shape
// (spec testable property 1).
func (u *UserCode) Code() (string, []WriteType, error) {
	read, err := TranslateReads(u.RawCode, u.Inputs, u.Mode)
	if err != nil {
		return "", nil, err
	}

	slots := make([]OutputSlot, len(u.tempNames))
	for i := range slots {
		slots[i] = OutputSlot{
			FieldType:   u.outputFields[i],
			CLType:      u.outputCL[i],
			TempName:    u.tempNames[i],
			GlobalIndex: u.globalIndex[i],
		}
	}
	written, types, err := TranslateWrites(read, u.Mode, slots)
	if err != nil {
		return "", nil, err
	}
	return written, types, nil
}

// Output returns a UserCodeOutput adapter presenting a single-output
// view over local output slot i.
func (u *UserCode) Output(i int) *UserCodeOutput {
	return &UserCodeOutput{Parent: u, LocalIndex: i}
}

// UserCodeOutput is a thin single-output adapter over one slot of a
// UserCode (spec §3). It is what OutputField and a re-homed InputField
// bind to after a merge.
type UserCodeOutput struct {
	Parent     *UserCode
	LocalIndex int
}

var _ Reader = (*UserCodeOutput)(nil)

func (o *UserCodeOutput) fragmentTag() {}

// Name returns the backing temporary's name.
func (o *UserCodeOutput) Name() string { return o.Parent.TempName(o.LocalIndex) }

// Read implements Reader. Reading this value non-locally is illegal:
// it names a value computed for the current work-item only, and
// spec §7 calls this out explicitly ("Non-local read of embedded
// merged kernel not expected").
func (o *UserCodeOutput) Read(_ addressing.Mode, local bool) (string, error) {
	if !local {
		return "", fmt.Errorf("fragment: non-local read of embedded merged kernel not expected")
	}
	return o.Name(), nil
}

// ReadElement implements Reader, with the same non-local restriction
// as Read.
func (o *UserCodeOutput) ReadElement(local bool) (string, error) {
	if !local {
		return "", fmt.Errorf("fragment: non-local read of embedded merged kernel not expected")
	}
	return o.Name(), nil
}
