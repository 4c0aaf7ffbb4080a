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
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the merger's tunable policy, normally loaded once at
// process start from a YAML file (spec §9 "Config knobs").
type Config struct {
	// LocalMemoryMerging allows a tile-loading kernel to be folded as a
	// merge source when true. Off by default: a merged tile loader's
	// halo fill must re-derive correctly against the sink's addressing,
	// which the merger does not yet attempt (see DESIGN.md).
	LocalMemoryMerging bool `yaml:"localMemoryMerging"`

	// MaxKernelArguments overrides maxKernelArguments when positive.
	MaxKernelArguments int `yaml:"maxKernelArguments"`

	// DefaultLocalSize2D/DefaultLocalSize1D hold local work-group sizes
	// loaded from YAML. prolog.Compute does not read them: it always
	// uses its built-in local sizes (16x16x1 and 256x1x1).
	DefaultLocalSize2D [2]int `yaml:"defaultLocalSize2D"`
	DefaultLocalSize1D int    `yaml:"defaultLocalSize1D"`
}

// DefaultConfig is the policy used when no config file is supplied.
func DefaultConfig() Config {
	return Config{
		LocalMemoryMerging: false,
		MaxKernelArguments: maxKernelArguments,
		DefaultLocalSize2D: [2]int{16, 16},
		DefaultLocalSize1D: 256,
	}
}

// LoadConfig reads and decodes a YAML config document, starting from
// DefaultConfig so a file only needs to set the fields it overrides.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("cogcl: decoding config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML config document from path.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cogcl: reading config %s: %w", path, err)
	}
	return LoadConfig(bytes.NewReader(data))
}
