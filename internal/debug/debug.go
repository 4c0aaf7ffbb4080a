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

//go:build debug

// Package debug includes emission-tracing helpers used while developing
// the merger and fragment-assembly passes. Built out of the binary
// entirely unless built with `-tags debug`.
package debug

import (
	"fmt"
	"os"

	"github.com/timandy/routine"
)

// Enabled is true when built with the debug tag.
const Enabled = true

// Log prints a trace line to stderr, tagged with the calling
// goroutine's id so interleaved concurrent compiles stay readable.
func Log(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "[g%04d] %s\n", routine.Goid(), msg)
}
