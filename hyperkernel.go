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

package cogcl

import (
	"fmt"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
	"github.com/hpe-cct/cct-core-sub004/internal/fragment"
	"github.com/hpe-cct/cct-core-sub004/internal/idgen"
	"github.com/hpe-cct/cct-core-sub004/internal/prolog"
	"github.com/hpe-cct/cct-core-sub004/internal/tile"
)

// HyperKernel is one node of the kernel graph: an addressing mode and
// opcode, an ordered list of inputs each bound to a virtual field
// register, an ordered list of outputs each driving a virtual field
// register, and a fragment DAG (seeded via AddCode or AddCodeFragment)
// computing those outputs from those inputs (spec §3 "hyper-kernel").
type HyperKernel struct {
	Opcode   Opcode
	Mode     addressing.Mode
	Sampling addressing.SamplingMode

	Inputs      []*fragment.InputField
	InputSource []*Register

	Outputs    []*fragment.OutputField
	OutputRegs []*Register

	// WorkFieldType is the field type the launch geometry and prolog
	// bounds-check are computed against — ordinarily the sole output's
	// field type, but a merged kernel may inherit a different work
	// field when the merge legality rules required it (spec §4.7).
	WorkFieldType addressing.FieldType

	// WorkGroupOverride, when non-nil, replaces the value WorkGroup()
	// would otherwise compute from WorkFieldType/Mode. copyWithNewInputs
	// copies it verbatim.
	WorkGroupOverride *prolog.WorkGroup

	// Tile, when non-nil, requests a local-memory tile load of input 0
	// in the prolog (spec §4.8). UsesLocalMemory is derived from this.
	Tile       *tile.Halo
	TileBorder tile.Border

	alloc idgen.Allocator

	// id is a per-goroutine monotonic tag minted once at construction
	// (shares hk.alloc's counter), used only to keep the emitted OpenCL
	// function name of sibling same-opcode kernels from colliding (spec
	// §4.6 "<opcode-name>_<id>"). It plays no role in merge legality or
	// CSE identity.
	id int

	circuit *Circuit

	// compoundCSEOpaque marks a merged or input-reduced kernel as never
	// equal, under CSE, to any other kernel (spec §4.7).
	compoundCSEOpaque bool
}

// NewHyperKernel builds an unseeded hyper-kernel wired to inputRegs as
// its inputs and producing one fresh register per entry of
// resultTypes as its outputs, and registers it (and its output
// registers) with c. Call AddCode or AddCodeFragment before using it.
func NewHyperKernel(c *Circuit, op Opcode, mode addressing.Mode, sampling addressing.SamplingMode, inputRegs []*Register, resultTypes []addressing.FieldType) (*HyperKernel, error) {
	hk := &HyperKernel{
		Opcode:   op,
		Mode:     mode,
		Sampling: sampling,
		circuit:  c,
	}
	hk.id = hk.alloc.Next()

	hk.Inputs = make([]*fragment.InputField, len(inputRegs))
	hk.InputSource = append([]*Register(nil), inputRegs...)
	for i, reg := range inputRegs {
		clt, err := addressing.CLType(mode, reg.FieldType)
		if err != nil {
			return nil, fmt.Errorf("cogcl: input %d: %w", i, err)
		}
		hk.Inputs[i] = &fragment.InputField{Index: i, FieldType: reg.FieldType, CLType: clt}
		reg.Sinks = append(reg.Sinks, hk)
	}

	hk.Outputs = make([]*fragment.OutputField, len(resultTypes))
	hk.OutputRegs = make([]*Register, len(resultTypes))
	for i, ft := range resultTypes {
		clt, err := addressing.CLType(mode, ft)
		if err != nil {
			return nil, fmt.Errorf("cogcl: output %d: %w", i, err)
		}
		hk.Outputs[i] = &fragment.OutputField{FieldType: ft, GlobalIndex: i, CLType: clt}
		hk.OutputRegs[i] = NewRegister(c, hk, i, ft)
	}

	if len(resultTypes) > 0 {
		hk.WorkFieldType = resultTypes[0]
	}

	if c != nil {
		c.AddKernel(hk)
	}
	return hk, nil
}

func readersOf(ins []*fragment.InputField) []fragment.Reader {
	out := make([]fragment.Reader, len(ins))
	for i, f := range ins {
		out[i] = f
	}
	return out
}

func inputCLTypes(ins []*fragment.InputField) []cltype.Type {
	out := make([]cltype.Type, len(ins))
	for i, f := range ins {
		out[i] = f.CLType
	}
	return out
}

func inputFieldTypes(ins []*fragment.InputField) []addressing.FieldType {
	out := make([]addressing.FieldType, len(ins))
	for i, f := range ins {
		out[i] = f.FieldType
	}
	return out
}

// AddCode seeds hk with a single UserCode fragment over the whole of
// hk.Inputs, computing all of hk.Outputs.
func (hk *HyperKernel) AddCode(code string) error {
	uc := fragment.NewUserCode(readersOf(hk.Inputs), hk.Mode, code, inputCLTypes(hk.Inputs), inputFieldTypes(hk.Inputs), len(hk.Outputs), hk.alloc)
	for i, out := range hk.Outputs {
		uc.SetOutputIndex(i, out.GlobalIndex, out.FieldType, out.CLType)
		out.Driving = uc.Output(i)
	}
	return nil
}

// AddCodeFragment seeds hk directly from a pre-built fragment DAG: one
// UserCodeOutput root per output slot, typically produced by the
// merger when assembling a merged kernel's composed DAG.
func (hk *HyperKernel) AddCodeFragment(roots []*fragment.UserCodeOutput) error {
	if len(roots) != len(hk.Outputs) {
		return fmt.Errorf("cogcl: AddCodeFragment: got %d roots, want %d", len(roots), len(hk.Outputs))
	}
	for i, r := range roots {
		r.Parent.SetOutputIndex(r.LocalIndex, hk.Outputs[i].GlobalIndex, hk.Outputs[i].FieldType, hk.Outputs[i].CLType)
		hk.Outputs[i].Driving = r
	}
	return nil
}

// WorkGroup returns the launch geometry for hk: WorkGroupOverride if
// set, otherwise the value computed from WorkFieldType and Mode.
func (hk *HyperKernel) WorkGroup() prolog.WorkGroup {
	if hk.WorkGroupOverride != nil {
		return *hk.WorkGroupOverride
	}
	return prolog.Compute(hk.WorkFieldType, hk.Mode)
}

// UsesLocalMemory reports whether hk's prolog needs the tile-loader's
// barrier, which in turn determines whether the bounds-check guard
// must be deferred until after that barrier (spec §4.3, §4.8).
func (hk *HyperKernel) UsesLocalMemory() bool { return hk.Tile != nil }

// HasDuplicatedInputs reports whether two or more of hk's input slots
// are bound to the same virtual field register (spec §4.7).
func (hk *HyperKernel) HasDuplicatedInputs() bool {
	seen := make(map[*Register]bool, len(hk.InputSource))
	for _, r := range hk.InputSource {
		if seen[r] {
			return true
		}
		seen[r] = true
	}
	return false
}

// RemoveRedundantInputs builds a replacement hyper-kernel with one
// input slot per distinct register, wrapping hk.Opcode in
// InputReduced. Duplicate slots are one-shot Bind-ed to their
// surviving sibling, so the existing UserCode fragment DAG's @in<v>
// numbering (scoped to each UserCode's own Inputs list, not to
// hk.Inputs) keeps resolving correctly without being rebuilt (spec
// §4.7).
func (hk *HyperKernel) RemoveRedundantInputs() (*HyperKernel, error) {
	seen := map[*Register]*fragment.InputField{}
	var newInputs []*fragment.InputField
	var newRegs []*Register

	for i, reg := range hk.InputSource {
		if surv, ok := seen[reg]; ok {
			if err := hk.Inputs[i].Bind(surv); err != nil {
				return nil, err
			}
			continue
		}
		seen[reg] = hk.Inputs[i]
		newInputs = append(newInputs, hk.Inputs[i])
		newRegs = append(newRegs, reg)
	}

	reduced := &HyperKernel{
		Opcode:            InputReduced(hk.Opcode),
		Mode:              hk.Mode,
		Sampling:          hk.Sampling,
		Inputs:            newInputs,
		InputSource:       newRegs,
		Outputs:           hk.Outputs,
		OutputRegs:        hk.OutputRegs,
		WorkFieldType:     hk.WorkFieldType,
		WorkGroupOverride: hk.WorkGroupOverride,
		Tile:              hk.Tile,
		TileBorder:        hk.TileBorder,
		alloc:             hk.alloc,
		id:                hk.alloc.Next(),
		circuit:           hk.circuit,
		compoundCSEOpaque: true,
	}

	for _, reg := range newRegs {
		reg.replaceSink(hk, reduced)
	}
	for _, outReg := range hk.OutputRegs {
		outReg.Source = reduced
	}
	if hk.circuit != nil {
		hk.circuit.replaceKernel(hk, reduced)
	}
	return reduced, nil
}

// CopyWithNewInputs builds a structurally identical hyper-kernel bound
// to a different set of input registers, for graph rewriting by
// foreign passes outside this package. WorkGroupOverride (if set) is
// copied field-by-field via deepcopy, matching spec §9's "workGroup
// overrides are copied verbatim by copyWithNewInputs".
func (hk *HyperKernel) CopyWithNewInputs(newRegs []*Register) (*HyperKernel, error) {
	if len(newRegs) != len(hk.Inputs) {
		return nil, fmt.Errorf("cogcl: CopyWithNewInputs: got %d registers, want %d", len(newRegs), len(hk.Inputs))
	}

	wgOverride, err := cloneWorkGroupOverride(hk.WorkGroupOverride)
	if err != nil {
		return nil, err
	}

	newInputs := make([]*fragment.InputField, len(newRegs))
	for i, reg := range newRegs {
		clt, err := addressing.CLType(hk.Mode, reg.FieldType)
		if err != nil {
			return nil, fmt.Errorf("cogcl: CopyWithNewInputs: input %d: %w", i, err)
		}
		newInputs[i] = &fragment.InputField{Index: i, FieldType: reg.FieldType, CLType: clt}
	}

	newOutputs := make([]*fragment.OutputField, len(hk.Outputs))
	rebuilt := map[*fragment.UserCode]*fragment.UserCode{}
	for i, out := range hk.Outputs {
		oldUC := out.Driving.Parent
		uc, ok := rebuilt[oldUC]
		if !ok {
			uc = fragment.NewUserCode(readersOf(newInputs), hk.Mode, oldUC.RawCode, inputCLTypes(newInputs), inputFieldTypes(newInputs), oldUC.OutputCount(), hk.alloc)
			rebuilt[oldUC] = uc
		}
		uc.SetOutputIndex(out.Driving.LocalIndex, out.GlobalIndex, out.FieldType, out.CLType)
		newOutputs[i] = &fragment.OutputField{FieldType: out.FieldType, GlobalIndex: out.GlobalIndex, CLType: out.CLType, Driving: uc.Output(out.Driving.LocalIndex)}
	}

	clone := &HyperKernel{
		Opcode:            hk.Opcode,
		Mode:              hk.Mode,
		Sampling:          hk.Sampling,
		Inputs:            newInputs,
		InputSource:       append([]*Register(nil), newRegs...),
		Outputs:           newOutputs,
		OutputRegs:        hk.OutputRegs,
		WorkFieldType:     hk.WorkFieldType,
		WorkGroupOverride: wgOverride,
		Tile:              hk.Tile,
		TileBorder:        hk.TileBorder,
		alloc:             hk.alloc,
		id:                hk.alloc.Next(),
		circuit:           hk.circuit,
	}
	for _, reg := range newRegs {
		reg.Sinks = append(reg.Sinks, clone)
	}
	if hk.circuit != nil {
		hk.circuit.AddKernel(clone)
	}
	return clone, nil
}
