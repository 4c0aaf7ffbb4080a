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

package cogcl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cogcl "github.com/hpe-cct/cct-core-sub004"
	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
)

func TestRunToFixpointVerticallyMergesChain(t *testing.T) {
	t.Parallel()

	circuit, sum, product, _, _, _ := sumProductCircuit(t)
	merges, err := cogcl.RunToFixpoint(circuit)
	require.NoError(t, err)
	assert.Equal(t, 1, merges)
	require.Len(t, circuit.Kernels(), 1)
	assert.Equal(t, "MergedOp(Mul, Add)", circuit.Kernels()[0].Opcode.String())
	_ = sum
	_ = product
}

func TestRunToFixpointMergesProbedIntermediateAndPreservesProbe(t *testing.T) {
	t.Parallel()

	circuit, sum, _, _, _, _ := sumProductCircuit(t)
	sum.OutputRegs[0].Probed = true
	sum.OutputRegs[0].Name = "sum_result"

	merges, err := cogcl.RunToFixpoint(circuit)
	require.NoError(t, err)
	assert.Equal(t, 1, merges)
	require.Len(t, circuit.Kernels(), 1)

	merged := circuit.Kernels()[0]
	require.Len(t, merged.Outputs, 2, "the probed intermediate must survive the merge as an extra output instead of being dropped")
	require.Len(t, merged.OutputRegs, 2)

	var probed *cogcl.Register
	for _, r := range merged.OutputRegs {
		if r.Name == "sum_result" {
			probed = r
		}
	}
	require.NotNil(t, probed)
	assert.True(t, probed.Probed)
	assert.Same(t, merged, probed.Source)
}

func TestRunToFixpointRespectsArgumentCap(t *testing.T) {
	t.Parallel()

	cfg := cogcl.DefaultConfig()
	cfg.MaxKernelArguments = 1
	circuit := cogcl.NewCircuitWithConfig(cfg)

	a := cogcl.NewRegister(circuit, nil, -1, scalarField)
	b := cogcl.NewRegister(circuit, nil, -1, scalarField)
	c := cogcl.NewRegister(circuit, nil, -1, scalarField)

	sum, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Add"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{a, b}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, sum.AddCode("@out0 = read(@in0) + read(@in1);"))

	product, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Mul"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{sum.OutputRegs[0], c}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, product.AddCode("@out0 = read(@in0) * read(@in1);"))

	merges, err := cogcl.RunToFixpoint(circuit)
	require.NoError(t, err)
	assert.Equal(t, 0, merges)
	assert.Len(t, circuit.Kernels(), 2)
}

func TestRunToFixpointHorizontallySharesIdenticalInputLists(t *testing.T) {
	t.Parallel()

	circuit := cogcl.NewCircuit()
	a := cogcl.NewRegister(circuit, nil, -1, scalarField)
	b := cogcl.NewRegister(circuit, nil, -1, scalarField)

	sum, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Add"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{a, b}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, sum.AddCode("@out0 = read(@in0) + read(@in1);"))

	diff, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Sub"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{a, b}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, diff.AddCode("@out0 = read(@in0) - read(@in1);"))

	merges, err := cogcl.RunToFixpoint(circuit)
	require.NoError(t, err)
	assert.Equal(t, 1, merges)
	require.Len(t, circuit.Kernels(), 1)

	merged := circuit.Kernels()[0]
	assert.Len(t, merged.Outputs, 2)
	assert.Equal(t, "MergedOp(Add, Sub)", merged.Opcode.String())
}

func TestRunToFixpointDedupsBeforeMerging(t *testing.T) {
	t.Parallel()

	circuit := cogcl.NewCircuit()
	a := cogcl.NewRegister(circuit, nil, -1, scalarField)

	square, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Square"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{a, a}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, square.AddCode("@out0 = read(@in0) * read(@in1);"))

	merges, err := cogcl.RunToFixpoint(circuit)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, merges, 1)
	require.Len(t, circuit.Kernels(), 1)
	assert.False(t, circuit.Kernels()[0].HasDuplicatedInputs())
}

func TestRunToFixpointDedupsIdenticalCommonSubexpressions(t *testing.T) {
	t.Parallel()

	circuit := cogcl.NewCircuit()
	a := cogcl.NewRegister(circuit, nil, -1, scalarField)
	b := cogcl.NewRegister(circuit, nil, -1, scalarField)

	first, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Add"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{a, b}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, first.AddCode("@out0 = read(@in0) + read(@in1);"))

	second, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Add"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{a, b}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, second.AddCode("@out0 = read(@in0) + read(@in1);"))

	// Two independent consumers, one per duplicate, so the duplicate
	// survives long enough for CSE-dedup to see it (a plain vertical
	// merge would otherwise absorb it first).
	consumer1, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Neg"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{first.OutputRegs[0]}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, consumer1.AddCode("@out0 = -read(@in0);"))

	consumer2, err := cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Abs"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{second.OutputRegs[0]}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, consumer2.AddCode("@out0 = fabs(read(@in0));"))

	merges, err := cogcl.RunToFixpoint(circuit)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, merges, 1)

	addCount := 0
	for _, hk := range circuit.Kernels() {
		if hk.Opcode.String() == "Add" {
			addCount++
		}
	}
	assert.Equal(t, 1, addCount, "the two identical Add kernels must collapse into one")
}
