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
	"github.com/google/uuid"
	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
)

// Register is a virtual field register: an edge in the kernel graph
// carrying a field-typed value from one hyper-kernel's output to zero
// or more sinks (spec §3 "Virtual field register", §6). During merging
// the core mutates it through StealSinksFrom, StealProbeAndNameFrom,
// StealOutputsFrom and replaceSink, and by reassigning Source;
// everything else is treated as an opaque handle by callers outside
// this package.
type Register struct {
	id uuid.UUID

	circuit *Circuit

	FieldType addressing.FieldType

	Source            *HyperKernel
	SourceOutputIndex int // -1 if not yet bound to a producer

	Sinks []*HyperKernel

	Probed bool
	Name   string
}

// NewRegister creates a register produced by source's output at
// outputIndex, registered with c so RemoveFromCircuit can find it
// later.
func NewRegister(c *Circuit, source *HyperKernel, outputIndex int, ft addressing.FieldType) *Register {
	r := &Register{
		id:                uuid.New(),
		circuit:           c,
		FieldType:         ft,
		Source:            source,
		SourceOutputIndex: outputIndex,
	}
	if c != nil {
		c.registers = append(c.registers, r)
	}
	return r
}

// StealSinksFrom moves every sink of other onto r, except exceptSink
// if non-nil (used when the merged sink itself was one of other's
// sinks and is being replaced rather than re-added).
func (r *Register) StealSinksFrom(other *Register, exceptSink *HyperKernel) {
	for _, s := range other.Sinks {
		if exceptSink != nil && s == exceptSink {
			continue
		}
		r.Sinks = append(r.Sinks, s)
	}
	other.Sinks = nil
}

// StealProbeAndNameFrom copies other's probe flag and debug name onto
// r. A probed register must never lose its probed status once set.
func (r *Register) StealProbeAndNameFrom(other *Register) {
	r.Probed = r.Probed || other.Probed
	if other.Name != "" {
		r.Name = other.Name
	}
}

// StealOutputsFrom re-homes everything spec §6 lists as mutable on a
// register: other's sinks, probe flag, and debug name.
func (r *Register) StealOutputsFrom(other *Register) {
	r.StealSinksFrom(other, nil)
	r.StealProbeAndNameFrom(other)
}

// replaceSink swaps every occurrence of old in r.Sinks for replacement.
func (r *Register) replaceSink(old, replacement *HyperKernel) {
	for i, s := range r.Sinks {
		if s == old {
			r.Sinks[i] = replacement
		}
	}
}

// RemoveFromCircuit detaches r from its owning circuit. mustDo mirrors
// the external interface's removeFromCircuit(mustDo) — when true, a
// missing circuit is a programming error rather than a silent no-op.
func (r *Register) RemoveFromCircuit(mustDo bool) {
	if r.circuit == nil {
		if mustDo {
			panic("cogcl: RemoveFromCircuit(mustDo=true) called on a register with no circuit")
		}
		return
	}
	r.circuit.removeRegister(r)
}
