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

import "fmt"

// WriteType classifies how a UserCode fragment's output slot is
// written to, inferred by scanning the raw user code text for the
// presence of one of the write tokens in spec §3/§4.5.
type WriteType int

const (
	Unknown WriteType = iota
	Null
	Local
	Nonlocal
	ElementNonlocal
)

func (w WriteType) String() string {
	switch w {
	case Unknown:
		return "Unknown"
	case Null:
		return "Null"
	case Local:
		return "Local"
	case Nonlocal:
		return "Nonlocal"
	case ElementNonlocal:
		return "ElementNonlocal"
	default:
		return fmt.Sprintf("WriteType(%d)", int(w))
	}
}

// IsNonlocal reports whether this write type performs any non-local
// write, the predicate the merger's "no output does a non-local
// write" precondition polls (spec §4.7, §9 open question: poll all
// output indices, not just index 0).
func (w WriteType) IsNonlocal() bool {
	return w == Nonlocal || w == ElementNonlocal
}
