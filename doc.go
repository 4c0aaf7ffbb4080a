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

// Package cogcl synthesizes OpenCL kernel source from a graph of
// hyper-kernels: small template-driven fragments of user kernel code
// wired together by virtual field registers.
//
// A [HyperKernel] is seeded with [HyperKernel.AddCode], a block of
// text using the read/write template tokens described in
// SPEC_FULL.md's addressing model (read(@in0), @out0, and their
// non-local/element variants). [NewCircuit] holds the live graph of
// hyper-kernels and registers; [RunToFixpoint] repeatedly applies
// input deduplication, common-subexpression deduplication, vertical
// merges, and horizontal kernel sharing until none of the four apply.
// Each rewrite is taken greedily as found, so the result is a fixpoint
// of these rewrites, not a search for the fewest possible kernels.
//
// [HyperKernel.KernelCode] assembles one kernel's final OpenCL source;
// [SourceCache] memoizes that text by content digest so textually
// identical kernels compiled from different goroutines, or compiled
// twice, reuse the same driver-side program object.
//
// # Support status
//
// The merger currently folds a local-memory (tile-loading) kernel as
// a merge source only when [Config.LocalMemoryMerging] is explicitly
// enabled — re-deriving a tile's halo fill against the sink's own
// addressing is not yet attempted, so the default is conservative.
package cogcl
