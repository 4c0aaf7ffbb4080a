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
	"regexp"
	"sort"
	"strings"

	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
	"github.com/hpe-cct/cct-core-sub004/internal/fragment"
	"github.com/hpe-cct/cct-core-sub004/internal/layout"
	"github.com/hpe-cct/cct-core-sub004/internal/prolog"
	"github.com/hpe-cct/cct-core-sub004/internal/tile"
)

// reachableUserCodes walks hk's fragment DAG from its outputs,
// collecting every distinct UserCode reachable through a bound
// InputField whose driver is a UserCodeOutput (an embedded, already-
// merged fragment), in post-order: every UserCode comes after the
// embedded UserCodes it reads from.
func reachableUserCodes(hk *HyperKernel) []*fragment.UserCode {
	seen := map[*fragment.UserCode]bool{}
	var order []*fragment.UserCode
	var visit func(uc *fragment.UserCode)
	visit = func(uc *fragment.UserCode) {
		if uc == nil || seen[uc] {
			return
		}
		seen[uc] = true
		for _, in := range uc.Inputs {
			f, ok := in.(*fragment.InputField)
			if !ok || !f.Bound() {
				continue
			}
			if uco, ok := f.Driver().(*fragment.UserCodeOutput); ok {
				visit(uco.Parent)
			}
		}
		order = append(order, uc)
	}
	for _, out := range hk.Outputs {
		if out.Driving != nil {
			visit(out.Driving.Parent)
		}
	}
	return order
}

func indexOfInput(hk *HyperKernel, f *fragment.InputField) int {
	for j, in := range hk.Inputs {
		if in == f {
			return j
		}
	}
	return -1
}

var nonlocalTokenKinds = []string{"readNonlocal(@in%d)", "readElementNonlocal(@in%d)", "_readTensorNonlocal(@in%d)", "_readTensorElementNonlocal(@in%d)"}

// NonlocallyReadInputIndices returns the set of hk.Inputs positions
// that some reachable UserCode reads with a non-local token (spec §3
// "derived flag nonlocallyReadInputIndices").
func (hk *HyperKernel) NonlocallyReadInputIndices() map[int]bool {
	result := map[int]bool{}
	for _, uc := range reachableUserCodes(hk) {
		for v, in := range uc.Inputs {
			f, ok := in.(*fragment.InputField)
			if !ok {
				continue
			}
			// A deduplicated or merged-away slot is bound to the
			// InputField that now holds its hk.Inputs position.
			for f.Bound() {
				next, ok := f.Driver().(*fragment.InputField)
				if !ok {
					break
				}
				f = next
			}
			j := indexOfInput(hk, f)
			if j < 0 {
				continue
			}
			for _, pat := range nonlocalTokenKinds {
				if strings.Contains(uc.RawCode, fmt.Sprintf(pat, v)) {
					result[j] = true
					break
				}
			}
		}
	}
	return result
}

// DoesNonlocalWrite reports whether any of hk's outputs performs a
// non-local write, polling every output index rather than just index
// 0 (spec §9's resolved open question: the safer interpretation).
func (hk *HyperKernel) DoesNonlocalWrite() bool {
	for _, out := range hk.Outputs {
		if out.Driving == nil {
			continue
		}
		uc := out.Driving.Parent
		types, err := fragment.CreateWriteTypes(uc.RawCode, uc.OutputCount())
		if err != nil {
			continue
		}
		if types[out.Driving.LocalIndex].IsNonlocal() {
			return true
		}
	}
	return false
}

var nonIdentChar = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// kernelFunctionName derives hk's emitted OpenCL function name from its
// opcode and its construction-order id, sanitized to a legal C
// identifier — MergeOpcodes composes opcode text with "(", ", ", ")"
// that can't appear in a symbol (spec §4.6 "<opcode-name>_<id>").
func kernelFunctionName(hk *HyperKernel) string {
	sanitized := strings.Trim(nonIdentChar.ReplaceAllString(hk.Opcode.String(), "_"), "_")
	return fmt.Sprintf("%s_%d", sanitized, hk.id)
}

var tempRenumberPattern = regexp.MustCompile(`_temp\d+_`)

// renumberTemps replaces the arbitrary global ids minted by idgen
// (scoped per-goroutine, not per-kernel, so not contiguous) with a
// dense, first-appearance-order _temp_1, _temp_2, ... sequence, so two
// emissions of the identical DAG from different goroutines produce
// byte-identical source (spec §5 "source-cache hits across concurrent
// compiles").
func renumberTemps(code string) string {
	order := map[string]int{}
	next := 1
	return tempRenumberPattern.ReplaceAllStringFunc(code, func(tok string) string {
		n, ok := order[tok]
		if !ok {
			n = next
			next++
			order[tok] = n
		}
		return fmt.Sprintf("_temp_%d", n)
	})
}

// KernelCode assembles hk's complete OpenCL kernel source: the header
// comment, argument list, field/work #defines, coordinate decls, the
// (possibly deferred) bounds check, the optional local-memory tile
// load, the post-order fragment body, the output epilog writes, and
// the matching #undef cleanup — then renumbers temporaries for
// determinism (spec §4.6).
func (hk *HyperKernel) KernelCode() (string, error) {
	wg := hk.WorkGroup()

	var b strings.Builder

	fmt.Fprintln(&b, prolog.Header(hk.Mode, wg))
	fmt.Fprintf(&b, "__kernel __attribute__((reqd_work_group_size(%d, %d, %d)))\n", wg.Local[0], wg.Local[1], wg.Local[2])
	fmt.Fprintf(&b, "void %s(%s) {\n", kernelFunctionName(hk), strings.Join(hk.argDecls(), ", "))

	var allDefines, allUndefs []string
	wd, wu := prolog.WorkDefines(hk.WorkFieldType)
	allDefines = append(allDefines, wd...)
	allUndefs = append(allUndefs, wu...)
	for i, in := range hk.Inputs {
		if in.Bound() {
			continue
		}
		d, u := prolog.FieldDefines(in.Name(), in.FieldType, layout.New(in.FieldType, 0))
		allDefines = append(allDefines, d...)
		allUndefs = append(allUndefs, u...)
		_ = i
	}
	for _, out := range hk.Outputs {
		d, u := prolog.FieldDefines(out.Name(), out.FieldType, layout.New(out.FieldType, 0))
		allDefines = append(allDefines, d...)
		allUndefs = append(allUndefs, u...)
	}
	for _, d := range allDefines {
		fmt.Fprintln(&b, d)
	}

	if hk.Sampling != addressing.SampleDontCare {
		fmt.Fprintln(&b, prolog.SamplerDecl(hk.Sampling))
	}
	fmt.Fprintln(&b, prolog.CoordDecls(hk.WorkFieldType, hk.Mode))

	bounds := prolog.BoundsCheck(hk.WorkFieldType)

	if hk.UsesLocalMemory() {
		// Local-memory kernels defer the bounds-check guard until after
		// the tile loader's barrier, so every work-item in the group
		// participates in the fill even if its own point is out of
		// range (spec §4.8).
		clt := hk.Inputs[0].CLType
		block, err := tile.Load(clt, *hk.Tile, hk.TileBorder)
		if err != nil {
			return "", fmt.Errorf("cogcl: tile load: %w", err)
		}
		block, err = fragment.TranslateReads(block, readersOf(hk.Inputs), hk.Mode)
		if err != nil {
			return "", fmt.Errorf("cogcl: translating tile load: %w", err)
		}
		fmt.Fprintln(&b, block)
	} else if bounds != "" {
		fmt.Fprintln(&b, bounds)
	}

	body, err := hk.body()
	if err != nil {
		return "", err
	}
	fmt.Fprintln(&b, body)

	epilog, err := hk.epilog()
	if err != nil {
		return "", err
	}
	fmt.Fprintln(&b, epilog)

	for _, u := range allUndefs {
		fmt.Fprintln(&b, u)
	}
	fmt.Fprintln(&b, "}")

	return renumberTemps(b.String()), nil
}

// argDecls lists the kernel argument declarations in input-then-output
// order, skipping any input slot already bound to another fragment
// (it contributes no argument of its own).
func (hk *HyperKernel) argDecls() []string {
	var decls []string
	for _, in := range hk.Inputs {
		if in.Bound() {
			continue
		}
		decls = append(decls, in.ArgDecl())
	}
	for _, out := range hk.Outputs {
		decls = append(decls, out.ArgDecl())
	}
	return decls
}

// body emits, in post-order, the declaration-and-assignment statement
// for every reachable UserCode's temporaries, each UserCode visited
// exactly once regardless of how many outputs or downstream UserCodes
// reference it.
func (hk *HyperKernel) body() (string, error) {
	ucs := reachableUserCodesPostOrder(hk)
	var b strings.Builder
	for _, uc := range ucs {
		code, _, err := uc.Code()
		if err != nil {
			return "", fmt.Errorf("cogcl: assembling fragment body: %w", err)
		}
		for i := 0; i < uc.OutputCount(); i++ {
			fmt.Fprintf(&b, "// %s\n", uc.TempName(i))
		}
		fmt.Fprintln(&b, code)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// reachableUserCodesPostOrder returns reachableUserCodes' post-order
// (a UserCode's own upstream inputs are emitted before it), the order
// the assembled body emits UserCode blocks in.
func reachableUserCodesPostOrder(hk *HyperKernel) []*fragment.UserCode {
	return reachableUserCodes(hk)
}

// epilog emits each output's deferred write statement, for whichever
// WriteType its code left un-inlined (Local and deferred Nonlocal; an
// in-place Nonlocal/ElementNonlocal write already landed inline during
// Code(), and contributes nothing further here).
func (hk *HyperKernel) epilog() (string, error) {
	var b strings.Builder
	for _, out := range hk.Outputs {
		if out.Driving == nil {
			continue
		}
		_, types, err := out.Driving.Parent.Code()
		if err != nil {
			return "", err
		}
		wt := types[out.Driving.LocalIndex]
		stmt, err := out.WriteResult(hk.Mode, wt)
		if err != nil {
			return "", fmt.Errorf("cogcl: output %d: %w", out.GlobalIndex, err)
		}
		if stmt != "" {
			fmt.Fprintln(&b, stmt)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// sortedKeys is a small helper used by callers that need deterministic
// iteration over a NonlocallyReadInputIndices-shaped set.
func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
