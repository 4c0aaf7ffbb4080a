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
	"strings"
)

// Opcode names the operation a hyper-kernel implements, for logging
// and cache-key diagnostics. A leaf opcode is just a name; merging
// composes leaves (and previously-composed opcodes) into a flat
// MergedOp list, and input-deduplication wraps whatever opcode it is
// given in InputReduced (spec §4.7, §3 "composed opcode").
type Opcode struct {
	base     string
	merged   []Opcode
	reducing *Opcode
}

// NewOpcode returns a leaf opcode named name.
func NewOpcode(name string) Opcode { return Opcode{base: name} }

// flattenList returns the list of leaf/merged-member opcodes op
// contributes to a new MergedOp, unwrapping one level of nested
// MergedOp so merging never nests (spec §4.7 "left-append flattening":
// merging a sink that is itself MergedOp(a,b) with a source opcode c
// yields MergedOp(a,b,c), never MergedOp(MergedOp(a,b),c)).
func flattenList(op Opcode) []Opcode {
	if op.merged != nil {
		return op.merged
	}
	return []Opcode{op}
}

// MergeOpcodes composes sink's opcode with source's, appending source
// after sink's own (already-flattened) member list.
func MergeOpcodes(sink, source Opcode) Opcode {
	list := append([]Opcode(nil), flattenList(sink)...)
	list = append(list, flattenList(source)...)
	return Opcode{merged: list}
}

// InputReduced wraps op to mark a kernel whose duplicated inputs were
// collapsed to a unique set (spec §4.7): the resulting kernel is never
// CSE-equal to any other kernel, including one with the identical
// unwrapped opcode, because InputReduced(X) != X under Equal.
func InputReduced(op Opcode) Opcode {
	return Opcode{reducing: &op}
}

// Equal is structural equality: same leaf name, or same flattened
// member list in the same order, or both InputReduced over equal
// inner opcodes.
func (o Opcode) Equal(other Opcode) bool {
	if (o.reducing == nil) != (other.reducing == nil) {
		return false
	}
	if o.reducing != nil {
		return o.reducing.Equal(*other.reducing)
	}
	if (o.merged == nil) != (other.merged == nil) {
		return false
	}
	if o.merged == nil {
		return o.base == other.base
	}
	if len(o.merged) != len(other.merged) {
		return false
	}
	for i := range o.merged {
		if !o.merged[i].Equal(other.merged[i]) {
			return false
		}
	}
	return true
}

func (o Opcode) String() string {
	if o.reducing != nil {
		return fmt.Sprintf("InputReduced(%s)", o.reducing.String())
	}
	if o.merged != nil {
		names := make([]string, len(o.merged))
		for i, m := range o.merged {
			names[i] = m.String()
		}
		return fmt.Sprintf("MergedOp(%s)", strings.Join(names, ", "))
	}
	return o.base
}
