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
	"github.com/hpe-cct/cct-core-sub004/internal/debug"
	"github.com/hpe-cct/cct-core-sub004/internal/fragment"
)

const maxKernelArguments = 256

func fieldTypesEqual(a, b addressing.FieldType) bool {
	if a.Element != b.Element {
		return false
	}
	if len(a.Field.Dims) != len(b.Field.Dims) || len(a.Tensor.Dims) != len(b.Tensor.Dims) {
		return false
	}
	for i := range a.Field.Dims {
		if a.Field.Dims[i] != b.Field.Dims[i] {
			return false
		}
	}
	for i := range a.Tensor.Dims {
		if a.Tensor.Dims[i] != b.Tensor.Dims[i] {
			return false
		}
	}
	return true
}

// sourceOutputDropped reports whether merge procedure step 2 discards
// source's output register outReg when folding source into sink: its
// sole consumer is sink and it isn't marked probed. A probed output is
// preserved even when it would otherwise be buried (spec §4.7 step 2,
// §4.7/§8 S5).
func sourceOutputDropped(outReg *Register, sink *HyperKernel) bool {
	if outReg.Probed {
		return false
	}
	return len(outReg.Sinks) == 1 && outReg.Sinks[0] == sink
}

// retainedSourceOutputCount counts source's outputs that step 2 keeps
// in the merged output set (anything not dropped by sourceOutputDropped).
func retainedSourceOutputCount(source, sink *HyperKernel) int {
	n := 0
	for _, outReg := range source.OutputRegs {
		if !sourceOutputDropped(outReg, sink) {
			n++
		}
	}
	return n
}

// canMergeWithSink checks every legality predicate of spec §4.7 for
// folding source's output at sinkInputIndex into sink. On failure it
// returns a reason string suitable for a log line; it is not an error
// type because "not mergeable" is an expected, common outcome, not a
// fault.
func canMergeWithSink(source, sink *HyperKernel, sinkInputIndex int) (bool, string) {
	if sinkInputIndex < 0 || sinkInputIndex >= len(sink.InputSource) {
		return false, "input index out of range"
	}
	reg := sink.InputSource[sinkInputIndex]
	if reg.Source != source {
		return false, "sink input is not driven by source"
	}
	if reg.SourceOutputIndex < 0 || reg.SourceOutputIndex >= len(source.Outputs) {
		return false, "source output index out of range"
	}
	if len(reg.Sinks) != 1 {
		return false, "source output has more than one consumer"
	}
	if sink.UsesLocalMemory() {
		return false, "sink uses local memory"
	}
	if source.Mode == addressing.BigTensor {
		return false, "BigTensor source cannot be merged"
	}
	if source.Mode != sink.Mode {
		return false, "addressing mode mismatch"
	}
	if !fieldTypesEqual(source.WorkFieldType, sink.WorkFieldType) {
		return false, "work field type mismatch"
	}
	if !source.WorkGroup().Equal(sink.WorkGroup()) {
		return false, "work-group geometry mismatch"
	}
	allowLocalMemorySource := sink.circuit != nil && sink.circuit.Config.LocalMemoryMerging
	if source.UsesLocalMemory() && !allowLocalMemorySource {
		return false, "local-memory kernel cannot be embedded as a merge source"
	}
	if source.DoesNonlocalWrite() {
		return false, "source performs a non-local write"
	}
	if sink.NonlocallyReadInputIndices()[sinkInputIndex] {
		return false, "sink reads source's output non-locally"
	}
	if _, ok := addressing.MergeSampling(source.Sampling, sink.Sampling); !ok {
		return false, "sampling mode mismatch"
	}

	argCap := argumentCap(sink)
	fastBound := len(source.Inputs) + (len(sink.Inputs) - 1) + len(sink.Outputs) + retainedSourceOutputCount(source, sink)
	if fastBound > argCap {
		if mergedArgumentCount(source, sink, sinkInputIndex) > argCap {
			return false, "merged kernel would exceed the argument count cap"
		}
	}

	return true, ""
}

// mergedArgumentCount computes the exact number of distinct kernel
// arguments (inputs, deduplicated by register, plus outputs, including
// any of source's outputs step 2 retains) the merged kernel would
// need, for the slow-path recheck below canMergeWithSink's fast bound.
func mergedArgumentCount(source, sink *HyperKernel, sinkInputIndex int) int {
	seen := map[*Register]bool{}
	for j, reg := range sink.InputSource {
		if j == sinkInputIndex {
			continue
		}
		seen[reg] = true
	}
	for _, reg := range source.InputSource {
		seen[reg] = true
	}
	return len(seen) + len(sink.Outputs) + retainedSourceOutputCount(source, sink)
}

// mergeEdge is one old kernel-level input slot to rebind onto the
// merged kernel's new input list.
type mergeEdge struct {
	field *fragment.InputField
	reg   *Register
}

// doMerge folds source into sink at sinkInputIndex, returning the
// replacement hyper-kernel that has taken both kernels' place in the
// circuit (spec §4.7's merge procedure).
func doMerge(source, sink *HyperKernel, sinkInputIndex int) (*HyperKernel, error) {
	if ok, reason := canMergeWithSink(source, sink, sinkInputIndex); !ok {
		return nil, fmt.Errorf("cogcl: cannot merge: %s", reason)
	}

	drivingIdx := sink.InputSource[sinkInputIndex].SourceOutputIndex

	var edges []mergeEdge
	for j, in := range sink.Inputs {
		if j == sinkInputIndex {
			continue
		}
		edges = append(edges, mergeEdge{in, sink.InputSource[j]})
	}
	for i, in := range source.Inputs {
		edges = append(edges, mergeEdge{in, source.InputSource[i]})
	}

	var newRegs []*Register
	regToNewInput := map[*Register]*fragment.InputField{}
	for _, e := range edges {
		if _, ok := regToNewInput[e.reg]; ok {
			continue
		}
		clt, err := addressing.CLType(sink.Mode, e.reg.FieldType)
		if err != nil {
			return nil, fmt.Errorf("cogcl: merge: %w", err)
		}
		nf := &fragment.InputField{Index: len(newRegs), FieldType: e.reg.FieldType, CLType: clt}
		regToNewInput[e.reg] = nf
		newRegs = append(newRegs, e.reg)
	}

	for _, e := range edges {
		if err := e.field.Bind(regToNewInput[e.reg]); err != nil {
			return nil, fmt.Errorf("cogcl: merge: rebinding input: %w", err)
		}
	}

	if err := sink.Inputs[sinkInputIndex].Bind(source.Outputs[drivingIdx].Driving); err != nil {
		return nil, fmt.Errorf("cogcl: merge: embedding source output: %w", err)
	}

	sampling, _ := addressing.MergeSampling(source.Sampling, sink.Sampling)

	newInputs := make([]*fragment.InputField, len(newRegs))
	for i, reg := range newRegs {
		newInputs[i] = regToNewInput[reg]
	}

	// Merge output set: sink's own outputs, followed by every source
	// output step 2 keeps. A kept non-driving output still has other
	// live consumers referencing its register directly, so it keeps
	// its existing identity; the driving output's register, if kept,
	// had its sole consumer (sink) just retired, so nothing else can
	// reference it — steal its sinks/probe/name onto a fresh register
	// instead (spec §4.7 step 7).
	mergedOutputs := append([]*fragment.OutputField(nil), sink.Outputs...)
	mergedOutputRegs := append([]*Register(nil), sink.OutputRegs...)
	for j, f := range source.Outputs {
		srcReg := source.OutputRegs[j]
		if sourceOutputDropped(srcReg, sink) {
			srcReg.RemoveFromCircuit(false)
			continue
		}
		if j == drivingIdx {
			nr := NewRegister(sink.circuit, nil, len(mergedOutputRegs), srcReg.FieldType)
			nr.StealOutputsFrom(srcReg)
			srcReg.RemoveFromCircuit(false)
			mergedOutputs = append(mergedOutputs, f)
			mergedOutputRegs = append(mergedOutputRegs, nr)
			continue
		}
		mergedOutputs = append(mergedOutputs, f)
		mergedOutputRegs = append(mergedOutputRegs, srcReg)
	}

	merged := &HyperKernel{
		Opcode:            MergeOpcodes(sink.Opcode, source.Opcode),
		Mode:              sink.Mode,
		Sampling:          sampling,
		Inputs:            newInputs,
		InputSource:       newRegs,
		Outputs:           mergedOutputs,
		OutputRegs:        mergedOutputRegs,
		WorkFieldType:     sink.WorkFieldType,
		WorkGroupOverride: sink.WorkGroupOverride,
		Tile:              sink.Tile,
		TileBorder:        sink.TileBorder,
		alloc:             sink.alloc,
		id:                sink.alloc.Next(),
		circuit:           sink.circuit,
		compoundCSEOpaque: true,
	}

	for _, reg := range newRegs {
		reg.replaceSink(sink, merged)
		reg.replaceSink(source, merged)
	}
	for _, outReg := range mergedOutputRegs {
		outReg.Source = merged
	}

	if sink.circuit != nil {
		sink.circuit.replaceKernel(sink, merged)
		sink.circuit.removeKernel(source)
	}

	if debug.Enabled {
		debug.Log("merged %s into %s at input %d -> %s", source.Opcode, sink.Opcode, sinkInputIndex, merged.Opcode)
	}

	return merged, nil
}

// FindMergeableInput scans hk's own inputs for one driven by a
// hyper-kernel that legally merges into hk, returning the first match
// in input-slot order.
func (hk *HyperKernel) FindMergeableInput() (source *HyperKernel, slot int, ok bool) {
	for j, reg := range hk.InputSource {
		if reg.Source == nil {
			continue
		}
		if legal, _ := canMergeWithSink(reg.Source, hk, j); legal {
			return reg.Source, j, true
		}
	}
	return nil, -1, false
}

// canShareMultiOutputKernel checks the horizontal/peer-merge legality
// rule: two kernels with no producer/consumer relationship between
// them, reading the identical ordered input register list under the
// same addressing mode and geometry, may be fused into one
// multi-output kernel so the shared inputs are declared and loaded
// only once (spec §4.7 "horizontal merge").
func canShareMultiOutputKernel(a, b *HyperKernel) (bool, string) {
	if a == b {
		return false, "identical kernel"
	}
	if a.Mode != b.Mode {
		return false, "addressing mode mismatch"
	}
	if !fieldTypesEqual(a.WorkFieldType, b.WorkFieldType) {
		return false, "work field type mismatch"
	}
	if !a.WorkGroup().Equal(b.WorkGroup()) {
		return false, "work-group geometry mismatch"
	}
	if a.UsesLocalMemory() || b.UsesLocalMemory() {
		return false, "local-memory kernels cannot share"
	}
	if _, ok := addressing.MergeSampling(a.Sampling, b.Sampling); !ok {
		return false, "sampling mode mismatch"
	}
	if len(a.InputSource) != len(b.InputSource) {
		return false, "input list shape mismatch"
	}
	for i := range a.InputSource {
		if a.InputSource[i] != b.InputSource[i] {
			return false, "input list mismatch"
		}
	}
	if len(a.Inputs)+len(a.Outputs)+len(b.Outputs) > argumentCap(a) {
		return false, "merged kernel would exceed the argument count cap"
	}
	return true, ""
}

// doShareMultiOutputKernel performs the horizontal merge: b's
// inputs delegate onto a's (identical register list, so position i of
// each lines up), and the merged kernel produces the concatenation of
// both kernels' outputs.
func doShareMultiOutputKernel(a, b *HyperKernel) (*HyperKernel, error) {
	if ok, reason := canShareMultiOutputKernel(a, b); !ok {
		return nil, fmt.Errorf("cogcl: cannot share: %s", reason)
	}

	for i, in := range b.Inputs {
		if err := in.Bind(a.Inputs[i]); err != nil {
			return nil, fmt.Errorf("cogcl: share: rebinding input: %w", err)
		}
	}

	merged := &HyperKernel{
		Opcode:            MergeOpcodes(a.Opcode, b.Opcode),
		Mode:              a.Mode,
		Sampling:          a.Sampling,
		Inputs:            a.Inputs,
		InputSource:       a.InputSource,
		Outputs:           append(append([]*fragment.OutputField(nil), a.Outputs...), b.Outputs...),
		OutputRegs:        append(append([]*Register(nil), a.OutputRegs...), b.OutputRegs...),
		WorkFieldType:     a.WorkFieldType,
		WorkGroupOverride: a.WorkGroupOverride,
		alloc:             a.alloc,
		id:                a.alloc.Next(),
		circuit:           a.circuit,
		compoundCSEOpaque: true,
	}

	for _, reg := range a.InputSource {
		reg.replaceSink(a, merged)
		reg.replaceSink(b, merged)
	}
	for _, outReg := range merged.OutputRegs {
		outReg.Source = merged
	}

	if a.circuit != nil {
		a.circuit.replaceKernel(a, merged)
		a.circuit.removeKernel(b)
	}

	return merged, nil
}

// cseEqual reports whether a and b are literal common subexpressions:
// equal (non-opaque) opcodes, equal addressing mode and sampling, the
// identical ordered input register list, and equal output field types.
// A merged or input-reduced kernel's compoundCSEOpaque flag makes it
// compare unequal to everything, including an identical-looking peer
// (spec §4.7 "compound-hyper-kernel distinction").
func cseEqual(a, b *HyperKernel) bool {
	if a.compoundCSEOpaque || b.compoundCSEOpaque {
		return false
	}
	if !a.Opcode.Equal(b.Opcode) {
		return false
	}
	if a.Mode != b.Mode || a.Sampling != b.Sampling {
		return false
	}
	if len(a.InputSource) != len(b.InputSource) {
		return false
	}
	for i := range a.InputSource {
		if a.InputSource[i] != b.InputSource[i] {
			return false
		}
	}
	if len(a.Outputs) != len(b.Outputs) {
		return false
	}
	for i := range a.Outputs {
		if !fieldTypesEqual(a.Outputs[i].FieldType, b.Outputs[i].FieldType) {
			return false
		}
	}
	return true
}

// dedupCSE finds the first pair of CSE-equal kernels in c and collapses
// dup onto keep: every live consumer of one of dup's outputs has its
// input register swapped for the matching output of keep (dup's
// Inputs are never themselves embedded into another kernel's fragment
// DAG at this point — only the merger's own Bind calls do that, and a
// kernel dup could have been vertically merged into no longer exists
// as a distinct entry of c.Kernels() — so only the register-level
// bookkeeping needs updating, never a fragment rebind). keep's output
// register then steals dup's sinks/probe/name, and dup is dropped from
// the circuit. Reports whether a pair was found.
func dedupCSE(c *Circuit) (bool, error) {
	kernels := c.Kernels()
	for i := 0; i < len(kernels); i++ {
		for j := i + 1; j < len(kernels); j++ {
			keep, dup := kernels[i], kernels[j]
			if !cseEqual(keep, dup) {
				continue
			}

			for outIdx, dupReg := range dup.OutputRegs {
				keepReg := keep.OutputRegs[outIdx]
				for _, sinkHK := range append([]*HyperKernel(nil), dupReg.Sinks...) {
					for k, in := range sinkHK.InputSource {
						if in == dupReg {
							sinkHK.InputSource[k] = keepReg
						}
					}
				}
				keepReg.StealOutputsFrom(dupReg)
				dupReg.RemoveFromCircuit(false)
			}

			if c != nil {
				c.removeKernel(dup)
			}
			if debug.Enabled {
				debug.Log("cse-deduped %s onto %s", dup.Opcode, keep.Opcode)
			}
			return true, nil
		}
	}
	return false, nil
}

// RunToFixpoint repeatedly applies input-dedup, CSE-dedup, vertical
// merge, and horizontal share passes over c until none apply, returning
// the total number of rewrites performed.
func RunToFixpoint(c *Circuit) (int, error) {
	count := 0
	for {
		progressed := false

		for _, hk := range c.Kernels() {
			if hk.HasDuplicatedInputs() {
				if _, err := hk.RemoveRedundantInputs(); err != nil {
					return count, err
				}
				count++
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}

		if did, err := dedupCSE(c); err != nil {
			return count, err
		} else if did {
			count++
			progressed = true
		}
		if progressed {
			continue
		}

		for _, hk := range c.Kernels() {
			if source, slot, ok := hk.FindMergeableInput(); ok {
				if _, err := doMerge(source, hk, slot); err != nil {
					return count, err
				}
				count++
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}

		kernels := c.Kernels()
		for i := 0; i < len(kernels) && !progressed; i++ {
			for j := i + 1; j < len(kernels); j++ {
				if ok, _ := canShareMultiOutputKernel(kernels[i], kernels[j]); ok {
					if _, err := doShareMultiOutputKernel(kernels[i], kernels[j]); err != nil {
						return count, err
					}
					count++
					progressed = true
					break
				}
			}
		}

		if !progressed {
			return count, nil
		}
	}
}
