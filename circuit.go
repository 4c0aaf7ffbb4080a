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
)

// Circuit is the mutable container the merger rewrites in place: the
// live set of hyper-kernels and the virtual field registers wiring
// them together (spec §3 "kernel graph"). SessionID is purely a
// debug/log correlation handle, minted once per circuit.
type Circuit struct {
	SessionID uuid.UUID
	Config    Config

	kernels   []*HyperKernel
	registers []*Register
}

// NewCircuit returns an empty circuit with a fresh session id and the
// default merger policy.
func NewCircuit() *Circuit {
	return &Circuit{SessionID: uuid.New(), Config: DefaultConfig()}
}

// NewCircuitWithConfig returns an empty circuit governed by cfg.
func NewCircuitWithConfig(cfg Config) *Circuit {
	return &Circuit{SessionID: uuid.New(), Config: cfg}
}

// argumentCap returns the merge argument-count cap in force for hk's
// circuit, falling back to maxKernelArguments outside any circuit.
func argumentCap(hk *HyperKernel) int {
	if hk.circuit != nil && hk.circuit.Config.MaxKernelArguments > 0 {
		return hk.circuit.Config.MaxKernelArguments
	}
	return maxKernelArguments
}

// Kernels returns the circuit's live hyper-kernels, in insertion/merge
// order. Callers must not mutate the returned slice.
func (c *Circuit) Kernels() []*HyperKernel { return c.kernels }

// Registers returns the circuit's live virtual field registers.
// Callers must not mutate the returned slice.
func (c *Circuit) Registers() []*Register { return c.registers }

// AddKernel registers hk with the circuit: it sets hk's circuit and
// appends hk to the live kernel list. It does not touch any register's
// Source or Sinks.
func (c *Circuit) AddKernel(hk *HyperKernel) {
	hk.circuit = c
	c.kernels = append(c.kernels, hk)
}

// removeKernel drops hk from the live kernel list. It does not touch
// any register's Source/Sinks — the caller (typically the merger) is
// responsible for re-homing those first.
func (c *Circuit) removeKernel(hk *HyperKernel) {
	for i, k := range c.kernels {
		if k == hk {
			c.kernels = append(c.kernels[:i], c.kernels[i+1:]...)
			return
		}
	}
}

// replaceKernel swaps old for replacement in the live kernel list,
// preserving position (used by RemoveRedundantInputs and by the
// merger so kernel order stays stable for deterministic emission).
func (c *Circuit) replaceKernel(old, replacement *HyperKernel) {
	for i, k := range c.kernels {
		if k == old {
			c.kernels[i] = replacement
			replacement.circuit = c
			return
		}
	}
	c.kernels = append(c.kernels, replacement)
	replacement.circuit = c
}

// removeRegister drops r from the live register list. It neither
// inspects nor clears r.Sinks.
func (c *Circuit) removeRegister(r *Register) {
	for i, reg := range c.registers {
		if reg == r {
			c.registers = append(c.registers[:i], c.registers[i+1:]...)
			return
		}
	}
}
