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

	"github.com/stretchr/testify/require"

	cogcl "github.com/hpe-cct/cct-core-sub004"
	"github.com/hpe-cct/cct-core-sub004/internal/addressing"
)

var scalarField = addressing.FieldType{Element: addressing.Float32}

// sumProductCircuit builds result = (a + b) * c as two chained
// hyper-kernels over three external registers, mirroring the
// cmd/cogcldump demo tool.
func sumProductCircuit(t *testing.T) (circuit *cogcl.Circuit, sum, product *cogcl.HyperKernel, extA, extB, extC *cogcl.Register) {
	t.Helper()
	circuit = cogcl.NewCircuit()

	extA = cogcl.NewRegister(circuit, nil, -1, scalarField)
	extB = cogcl.NewRegister(circuit, nil, -1, scalarField)
	extC = cogcl.NewRegister(circuit, nil, -1, scalarField)

	var err error
	sum, err = cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Add"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{extA, extB}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, sum.AddCode("@out0 = read(@in0) + read(@in1);"))

	product, err = cogcl.NewHyperKernel(circuit, cogcl.NewOpcode("Mul"), addressing.SmallTensor, addressing.SampleDontCare,
		[]*cogcl.Register{sum.OutputRegs[0], extC}, []addressing.FieldType{scalarField})
	require.NoError(t, err)
	require.NoError(t, product.AddCode("@out0 = read(@in0) * read(@in1);"))
	product.OutputRegs[0].Name = "result"
	product.OutputRegs[0].Probed = true

	return circuit, sum, product, extA, extB, extC
}
