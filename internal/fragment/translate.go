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
	"regexp"
	"strconv"
	"strings"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/cltype"
	"github.com/hpe-cct/cct-core-sub004/internal/layout"
)

// readToken names one of the textual read forms a UserCode body may
// use, in the substitution priority order mandated by spec §4.5 —
// most specific token text first, so that e.g. "readNonlocal(@in0)" is
// matched before "read(@in0)" ever gets a chance to see it.
type readToken struct {
	wrap func(n int) string
	kind readKind
}

type readKind int

const (
	kindReadNonlocal readKind = iota
	kindElementNonlocal
	kindElement
	kindPoint
	kindScalar
	kindRead
	kindTensorLocal
	kindTensorNonlocal
	kindTensorElementLocal
	kindTensorElementNonlocal
	kindFieldName
)

var readTokens = []readToken{
	{kind: kindReadNonlocal, wrap: func(n int) string { return fmt.Sprintf("readNonlocal(@in%d)", n) }},
	{kind: kindElementNonlocal, wrap: func(n int) string { return fmt.Sprintf("readElementNonlocal(@in%d)", n) }},
	{kind: kindElement, wrap: func(n int) string { return fmt.Sprintf("readElement(@in%d)", n) }},
	{kind: kindPoint, wrap: func(n int) string { return fmt.Sprintf("readPoint(@in%d)", n) }},
	{kind: kindScalar, wrap: func(n int) string { return fmt.Sprintf("readScalar(@in%d)", n) }},
	{kind: kindRead, wrap: func(n int) string { return fmt.Sprintf("read(@in%d)", n) }},
	{kind: kindTensorLocal, wrap: func(n int) string { return fmt.Sprintf("_readTensorLocal(@in%d)", n) }},
	{kind: kindTensorNonlocal, wrap: func(n int) string { return fmt.Sprintf("_readTensorNonlocal(@in%d)", n) }},
	{kind: kindTensorElementLocal, wrap: func(n int) string { return fmt.Sprintf("_readTensorElementLocal(@in%d)", n) }},
	{kind: kindTensorElementNonlocal, wrap: func(n int) string { return fmt.Sprintf("_readTensorElementNonlocal(@in%d)", n) }},
	{kind: kindFieldName, wrap: func(n int) string { return fmt.Sprintf("fieldName(@in%d)", n) }},
}

// TranslateReads rewrites every read token in code that addresses one
// of inputs, in the order from spec §4.5. Only InputField-backed
// inputs are numbered and substituted; an input driven directly by a
// UserCode-style Reader without an InputField wrapper is assumed
// already inlined by a prior expansion and is skipped, per spec's
// "UserCode inputs are skipped during read translation".
func TranslateReads(code string, inputs []Reader, mode addressing.Mode) (string, error) {
	out := code
	v := 0
	for _, in := range inputs {
		field, ok := in.(*InputField)
		if !ok {
			continue // embedded, already-inlined UserCode input; not numbered
		}
		idx := v
		v++

		for _, tok := range readTokens {
			pattern := tok.wrap(idx)
			if !strings.Contains(out, pattern) {
				continue
			}
			var repl string
			var err error
			switch tok.kind {
			case kindReadNonlocal:
				repl, err = field.Read(mode, false)
			case kindElementNonlocal:
				repl, err = field.ReadElement(false)
			case kindElement:
				repl, err = field.ReadElement(true)
			case kindPoint:
				repl, err = field.Read(mode, true)
			case kindScalar:
				repl, err = field.ReadElement(true)
			case kindRead:
				repl, err = field.Read(mode, true)
			case kindTensorLocal:
				repl, err = field.Read(mode, true)
			case kindTensorNonlocal:
				repl, err = field.Read(mode, false)
			case kindTensorElementLocal:
				repl, err = field.ReadElement(true)
			case kindTensorElementNonlocal:
				repl, err = field.ReadElement(false)
			case kindFieldName:
				repl = field.Name()
			}
			if err != nil {
				return "", fmt.Errorf("fragment: translating %q: %w", pattern, err)
			}
			out = strings.ReplaceAll(out, pattern, repl)
		}
	}
	return out, nil
}

// writeTokenSpec describes one textual write form.
type writeTokenSpec struct {
	text string
	typ  WriteType
}

// writeTokensFor returns the token texts to probe for output index i,
// ordered most-specific-first per spec §4.5 step 1, paired with the
// WriteType each maps to. @out<i>/_writeTensorLocal<i> and
// @outElement<i>/_writeTensorElementLocal<i> both map to Local (the
// enum has no separate element-local bucket; see DESIGN.md); the
// nonlocal element form gets its own ElementNonlocal bucket since the
// merger must reason about it separately from a whole-tensor nonlocal
// write.
func writeTokensFor(i int) []writeTokenSpec {
	s := strconv.Itoa(i)
	return []writeTokenSpec{
		{"@outElementNonlocal" + s, ElementNonlocal},
		{"_writeTensorElementNonlocal" + s, ElementNonlocal},
		{"@outElement" + s, Local},
		{"_writeTensorElementLocal" + s, Local},
		{"@outNonlocal" + s, Nonlocal},
		{"_writeTensorNonlocal" + s, Nonlocal},
		{"@out" + s, Local},
		{"_writeTensorLocal" + s, Local},
	}
}

// fieldNameOrPartStrideToken matches fieldName(@out<i>) and
// partStride(@out<i>), which embed the bare "@out<i>" Local write
// token as a substring of their own text. They name an argument, not
// a write statement, and must not be allowed to masquerade as a Local
// write when the write-kind scan below runs.
var fieldNameOrPartStrideToken = regexp.MustCompile(`(?:fieldName|partStride)\(@out\d+\)`)

// CreateWriteTypes scans code for the write tokens of each of the
// outputCount output slots and returns one WriteType per slot. Two
// distinct token kinds mapping to different WriteTypes for the same
// slot is an error (spec §3, §7 "Illegal write combination").
func CreateWriteTypes(code string, outputCount int) ([]WriteType, error) {
	scanned := fieldNameOrPartStrideToken.ReplaceAllString(code, "")
	types := make([]WriteType, outputCount)
	for i := range types {
		found := Unknown
		for _, tok := range writeTokensFor(i) {
			if !strings.Contains(scanned, tok.text) {
				continue
			}
			if found != Unknown && found != tok.typ {
				return nil, fmt.Errorf("fragment: output %d: multiple kernel output statements must be of same type", i)
			}
			found = tok.typ
		}
		if found == Unknown {
			found = Null
		}
		types[i] = found
	}
	return types, nil
}

// OutputSlot carries the per-output context TranslateWrites needs
// that a UserCode fragment does not own directly: the OutputField's
// field/CL type, the temporary variable local writes assign into, and
// the assigned global output index (spec §3: "-1 until the
// hyper-kernel or merger assigns them").
type OutputSlot struct {
	FieldType   addressing.FieldType
	CLType      cltype.Type
	TempName    string
	GlobalIndex int
}

// doInplaceNonlocalWrite implements spec §4.5 step 2: SmallTensor with
// a one-point tensor, any TensorElement, and any BigTensor write
// non-locally in place; a multi-element SmallTensor non-local write
// must be deferred to the output epilog instead.
func doInplaceNonlocalWrite(ft addressing.FieldType, mode addressing.Mode) bool {
	switch mode {
	case addressing.SmallTensor:
		return ft.Tensor.Points() == 1
	default:
		return true
	}
}

// TranslateWrites rewrites every write token in code, output indices
// high to low, per spec §4.5. It returns the rewritten code and the
// per-slot WriteType (equal to what CreateWriteTypes would report on
// the original text).
func TranslateWrites(code string, mode addressing.Mode, outputs []OutputSlot) (string, []WriteType, error) {
	types, err := CreateWriteTypes(code, len(outputs))
	if err != nil {
		return "", nil, err
	}

	out := code
	for i := len(outputs) - 1; i >= 0; i-- {
		slot := outputs[i]
		wt := types[i]

		// fieldName(@out<i>) / partStride(@out<i>) are only valid for
		// non-local writes, and must be masked before the write-token
		// scan below sees them, per spec §4.5 step 1.
		fieldNameTok := fmt.Sprintf("fieldName(@out%d)", i)
		partStrideTok := fmt.Sprintf("partStride(@out%d)", i)
		if strings.Contains(out, fieldNameTok) {
			if !wt.IsNonlocal() {
				return "", nil, fmt.Errorf("fragment: output %d: fieldName(@out%d) only valid for non-local writes", i, i)
			}
			if slot.GlobalIndex < 0 {
				return "", nil, fmt.Errorf("fragment: output %d: fieldName(@out%d) emitted before setOutputIndex", i, i)
			}
			out = strings.ReplaceAll(out, fieldNameTok, fmt.Sprintf("_out_field_%d", slot.GlobalIndex))
		}
		if strings.Contains(out, partStrideTok) {
			if !wt.IsNonlocal() {
				return "", nil, fmt.Errorf("fragment: output %d: partStride(@out%d) only valid for non-local writes", i, i)
			}
			out = strings.ReplaceAll(out, partStrideTok, fmt.Sprintf("%s_partStride", slot.TempName))
		}

		switch wt {
		case Null:
			// nothing to rewrite

		case Local:
			for _, tok := range []string{
				fmt.Sprintf("@outElement%d", i),
				fmt.Sprintf("_writeTensorElementLocal%d", i),
				fmt.Sprintf("@out%d", i),
				fmt.Sprintf("_writeTensorLocal%d", i),
			} {
				if strings.Contains(out, tok) {
					out = strings.ReplaceAll(out, tok, slot.TempName)
				}
			}

		case Nonlocal:
			inplace := doInplaceNonlocalWrite(slot.FieldType, mode)
			for _, tok := range []string{
				fmt.Sprintf("@outNonlocal%d", i),
				fmt.Sprintf("_writeTensorNonlocal%d", i),
			} {
				if !strings.Contains(out, tok) {
					continue
				}
				if inplace {
					ptr := layout.WritePointer(slot.FieldType, slot.TempName, false)
					out = strings.ReplaceAll(out, tok, ptr)
				} else {
					out = strings.ReplaceAll(out, tok, slot.TempName)
				}
			}

		case ElementNonlocal:
			if slot.GlobalIndex < 0 {
				return "", nil, fmt.Errorf("fragment: output %d: element write emitted before setOutputIndex", i)
			}
			for _, tok := range []string{
				fmt.Sprintf("@outElementNonlocal%d", i),
				fmt.Sprintf("_writeTensorElementNonlocal%d", i),
			} {
				if strings.Contains(out, tok) {
					ptr := layout.WritePointer(slot.FieldType, slot.TempName, false)
					out = strings.ReplaceAll(out, tok, ptr)
				}
			}
		}
	}

	return out, types, nil
}
