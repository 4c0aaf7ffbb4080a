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

// Package idgen implements the per-thread monotonic counter used to
// mint distinct output variable names across a single kernel emission
// (spec §3 "Unique-ID allocator", §5 "Per-thread determinism of
// names"). Two goroutines compiling the same graph each get their own
// counter seeded at 0, so identical source graphs always produce
// byte-identical temporary names regardless of which goroutine did the
// work.
package idgen

import "github.com/timandy/routine"

var counters = routine.NewThreadLocalWithInitial(func() any {
	n := 0
	return &n
})

// Allocator mints successive small integers, scoped to the calling
// goroutine. The zero Allocator is ready to use.
type Allocator struct{}

// Next returns the next unique integer for the calling goroutine's
// counter, starting at 0.
func (Allocator) Next() int {
	p := counters.Get().(*int)
	v := *p
	*p = v + 1
	return v
}

// Reset rewinds the calling goroutine's counter to 0. Intended to be
// called once before compiling a graph, per spec §9's "well-defined
// reset point" note; emission itself never calls this.
func (Allocator) Reset() {
	counters.Set(new(int))
}
