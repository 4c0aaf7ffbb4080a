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

	"github.com/hpe-cct/cct-core-sub004/internal/prolog"
	"github.com/tiendc/go-deepcopy"
)

// cloneWorkGroupOverride deep-copies a WorkGroup override. WorkGroup
// is a plain value struct (three fixed-size int arrays and an int),
// exactly the shape go-deepcopy is for — the fragment DAG it sits
// beside is graph-shaped with one-shot Bind semantics that a generic
// deep-copy would corrupt, so CopyWithNewInputs relinks that part by
// hand instead (see DESIGN.md).
func cloneWorkGroupOverride(wg *prolog.WorkGroup) (*prolog.WorkGroup, error) {
	if wg == nil {
		return nil, nil
	}
	clone := new(prolog.WorkGroup)
	if err := deepcopy.Copy(clone, wg); err != nil {
		return nil, fmt.Errorf("cogcl: cloning work-group override: %w", err)
	}
	return clone, nil
}
