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

func TestNewRegisterRegistersWithCircuit(t *testing.T) {
	t.Parallel()

	c := cogcl.NewCircuit()
	r := cogcl.NewRegister(c, nil, -1, scalarField)
	assert.Contains(t, c.Registers(), r)
}

func TestStealSinksFromExceptSink(t *testing.T) {
	t.Parallel()

	_, sum, product, _, _, _ := sumProductCircuit(t)
	other := cogcl.NewRegister(nil, nil, -1, scalarField)
	other.Sinks = []*cogcl.HyperKernel{sum, product}

	dst := cogcl.NewRegister(nil, nil, -1, scalarField)
	dst.StealSinksFrom(other, product)

	assert.Equal(t, []*cogcl.HyperKernel{sum}, dst.Sinks)
	assert.Empty(t, other.Sinks)
}

func TestStealProbeAndNameFromPreservesExistingProbe(t *testing.T) {
	t.Parallel()

	dst := cogcl.NewRegister(nil, nil, -1, scalarField)
	dst.Probed = true

	src := cogcl.NewRegister(nil, nil, -1, scalarField)
	src.Name = "result"

	dst.StealProbeAndNameFrom(src)
	assert.True(t, dst.Probed)
	assert.Equal(t, "result", dst.Name)
}

func TestRemoveFromCircuitPanicsWhenMustDoAndNoCircuit(t *testing.T) {
	t.Parallel()

	r := cogcl.NewRegister(nil, nil, -1, scalarField)
	assert.Panics(t, func() { r.RemoveFromCircuit(true) })
	assert.NotPanics(t, func() { r.RemoveFromCircuit(false) })
}

func TestRemoveFromCircuitDetaches(t *testing.T) {
	t.Parallel()

	c := cogcl.NewCircuit()
	r := cogcl.NewRegister(c, nil, -1, addressing.FieldType{})
	require.Contains(t, c.Registers(), r)
	r.RemoveFromCircuit(true)
	assert.NotContains(t, c.Registers(), r)
}
