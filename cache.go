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
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// SourceCache memoizes a hyper-kernel's assembled OpenCL source by a
// content digest of the normalized (post-renumbering) text, so two
// structurally identical graphs compiled from different goroutines —
// or the same graph compiled twice — hit the cache instead of
// re-assembling and re-uploading identical source to the driver (spec
// §5 "source-cache hits across concurrent compiles").
type SourceCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewSourceCache returns an empty cache.
func NewSourceCache() *SourceCache {
	return &SourceCache{entries: make(map[string]string)}
}

// digest returns the hex-encoded blake2b-256 digest of code.
func digest(code string) string {
	sum := blake2b.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// GetOrAssemble returns the cached source for hk's current fragment
// DAG shape, assembling and storing it on a miss. The key is computed
// from the assembled text itself (not from the kernel's identity), so
// a cache hit reflects true textual equality, not merely having seen
// this *HyperKernel pointer before.
func (c *SourceCache) GetOrAssemble(hk *HyperKernel) (string, bool, error) {
	code, err := hk.KernelCode()
	if err != nil {
		return "", false, fmt.Errorf("cogcl: assembling kernel: %w", err)
	}
	key := digest(code)

	c.mu.RLock()
	_, hit := c.entries[key]
	c.mu.RUnlock()
	if hit {
		return code, true, nil
	}

	c.mu.Lock()
	c.entries[key] = code
	c.mu.Unlock()
	return code, false, nil
}

// Len returns the number of distinct source texts currently cached.
func (c *SourceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
