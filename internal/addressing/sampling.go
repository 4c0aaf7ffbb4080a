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

package addressing

import "fmt"

// SamplingMode selects the OpenCL sampler configuration used for
// image-backed reads, if any. DontCare is compatible with every other
// mode and yields the other mode when merged.
type SamplingMode int

const (
	SampleDontCare SamplingMode = iota
	SampleClampToEdge
	SampleClampToZero
	SampleWrap
)

func (s SamplingMode) String() string {
	switch s {
	case SampleDontCare:
		return "DontCare"
	case SampleClampToEdge:
		return "ClampToEdge"
	case SampleClampToZero:
		return "ClampToZero"
	case SampleWrap:
		return "Wrap"
	default:
		return fmt.Sprintf("SamplingMode(%d)", int(s))
	}
}

// CLKFlag returns the sampler_t bitmask fragment for the non-filter
// addressing component of this sampling mode.
func (s SamplingMode) CLKFlag() string {
	switch s {
	case SampleClampToEdge:
		return "CLK_ADDRESS_CLAMP_TO_EDGE"
	case SampleClampToZero:
		return "CLK_ADDRESS_CLAMP"
	case SampleWrap:
		return "CLK_ADDRESS_REPEAT"
	default:
		return "CLK_ADDRESS_NONE"
	}
}

// MergeSampling implements the merge-compatibility rule from spec
// §4.1: DontCare is compatible with anything and yields the other
// operand; two identical modes are compatible and yield themselves;
// anything else is incompatible.
func MergeSampling(a, b SamplingMode) (SamplingMode, bool) {
	if a == SampleDontCare {
		return b, true
	}
	if b == SampleDontCare {
		return a, true
	}
	if a == b {
		return a, true
	}
	return SampleDontCare, false
}
