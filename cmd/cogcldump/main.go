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

// cogcldump builds a small demonstration kernel graph, runs the merger
// to a fixpoint, and prints the assembled OpenCL source for every
// surviving kernel. It exists to exercise the merger end to end
// without a real OpenCL driver.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	cogcl "github.com/hpe-cct/cct-core-sub004"
	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
)

var (
	configPath = flag.String("config", "", "path to a YAML merger config; defaults to cogcl.DefaultConfig()")
	quiet      = flag.Bool("q", false, "suppress the ruled section headers")
)

// scalarField is a 0-D, 1-point-tensor, Float32 field type, used
// throughout this demo as a stand-in for a full per-field descriptor.
var scalarField = addressing.FieldType{Element: addressing.Float32}

func ruleWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 72
	}
	return w
}

func section(out *strings.Builder, title string) {
	if *quiet {
		return
	}
	fmt.Fprintln(out, strings.Repeat("-", ruleWidth()))
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, strings.Repeat("-", ruleWidth()))
}

// buildDemoCircuit constructs: out = (a + b) * c, as two hyper-kernels
// chained through one virtual field register — a sum kernel feeding a
// product kernel, both consuming external inputs.
func buildDemoCircuit() (*cogcl.Circuit, error) {
	circuit := cogcl.NewCircuit()

	extA := cogcl.NewRegister(circuit, nil, -1, scalarField)
	extB := cogcl.NewRegister(circuit, nil, -1, scalarField)
	extC := cogcl.NewRegister(circuit, nil, -1, scalarField)

	sum, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Add"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{extA, extB}, []addressing.FieldType{scalarField})
	if err != nil {
		return nil, fmt.Errorf("cogcldump: building sum kernel: %w", err)
	}
	if err := sum.AddCode("@out0 = read(@in0) + read(@in1);"); err != nil {
		return nil, err
	}

	product, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Mul"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{sum.OutputRegs[0], extC}, []addressing.FieldType{scalarField})
	if err != nil {
		return nil, fmt.Errorf("cogcldump: building product kernel: %w", err)
	}
	if err := product.AddCode("@out0 = read(@in0) * read(@in1);"); err != nil {
		return nil, err
	}
	product.OutputRegs[0].Name = "result"
	product.OutputRegs[0].Probed = true

	return circuit, nil
}

func run(out *strings.Builder) error {
	cfg := cogcl.DefaultConfig()
	if *configPath != "" {
		loaded, err := cogcl.LoadConfigFile(*configPath)
		if err != nil {
			return fmt.Errorf("cogcldump: %w", err)
		}
		cfg = loaded
	}

	circuit, err := buildDemoCircuit()
	if err != nil {
		return err
	}
	circuit.Config = cfg

	section(out, fmt.Sprintf("before merging (%d kernels)", len(circuit.Kernels())))
	if err := dumpCircuit(out, circuit); err != nil {
		return err
	}

	merges, err := cogcl.RunToFixpoint(circuit)
	if err != nil {
		return fmt.Errorf("cogcldump: merging: %w", err)
	}

	section(out, fmt.Sprintf("after merging (%d rewrite(s), %d kernel(s) remain)", merges, len(circuit.Kernels())))
	return dumpCircuit(out, circuit)
}

func dumpCircuit(out *strings.Builder, circuit *cogcl.Circuit) error {
	cache := cogcl.NewSourceCache()
	for i, hk := range circuit.Kernels() {
		code, hit, err := cache.GetOrAssemble(hk)
		if err != nil {
			return fmt.Errorf("cogcldump: kernel %d: %w", i, err)
		}
		fmt.Fprintf(out, "// kernel %d, opcode %s, cache hit=%v\n%s\n\n", i, hk.Opcode, hit, code)
	}
	return nil
}

func main() {
	flag.Parse()

	var out strings.Builder
	if err := run(&out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Print(out.String())
}
