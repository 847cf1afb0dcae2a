// Copyright 2025 bitonicSort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the optional TOML configuration file. Command-line
// flags override the values it provides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Dilhara-Jayashan/bitonicSort/bitonic"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/cluster"
	"github.com/Dilhara-Jayashan/bitonicSort/bitonic/contrib/parallel"
)

// Config is the complete file format.
//
//	[sort]
//	threads = 8
//	workers = 4
//	strategy = "gather"
//	grain = 1024
//	schedule = "static"
//
//	[output]
//	dir = "OutputFiles"
//
//	[cluster]
//	listen = ":7946"
//	coordinator = "ws://10.0.0.1:7946/"
//	timeout = "2m"
type Config struct {
	Sort    Sort    `toml:"sort"`
	Output  Output  `toml:"output"`
	Cluster Cluster `toml:"cluster"`
}

// Sort holds the engine parameters.
type Sort struct {
	Threads  int    `toml:"threads"` // 0 means GOMAXPROCS
	Workers  int    `toml:"workers"`
	Strategy string `toml:"strategy"`
	Grain    int    `toml:"grain"`
	Schedule string `toml:"schedule"`
}

// Output holds where results are written.
type Output struct {
	Dir string `toml:"dir"`
}

// Cluster holds the multi-process transport settings.
type Cluster struct {
	Listen      string        `toml:"listen"`
	Coordinator string        `toml:"coordinator"`
	Timeout     time.Duration `toml:"timeout"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Sort: Sort{
			Workers:  4,
			Strategy: cluster.GatherMerge.String(),
			Grain:    1024,
			Schedule: parallel.Static.String(),
		},
		Output:  Output{Dir: "OutputFiles"},
		Cluster: Cluster{Timeout: 2 * time.Minute},
	}
}

// Load reads path on top of Defaults. An empty path returns the defaults.
// Unknown keys are rejected so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid value at once.
func (c Config) Validate() error {
	var errs []error
	if c.Sort.Threads < 0 {
		errs = append(errs, fmt.Errorf("sort.threads must be >= 0, got %d", c.Sort.Threads))
	}
	if c.Sort.Workers < 1 || !bitonic.IsPowerOfTwo(c.Sort.Workers) {
		errs = append(errs, fmt.Errorf("sort.workers must be a power of two, got %d", c.Sort.Workers))
	}
	if _, err := cluster.ParseStrategy(c.Sort.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("sort.strategy: %w", err))
	}
	if _, err := parallel.ParseSchedule(c.Sort.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("sort.schedule: %w", err))
	}
	if c.Sort.Grain < 1 {
		errs = append(errs, fmt.Errorf("sort.grain must be positive, got %d", c.Sort.Grain))
	}
	if c.Output.Dir == "" {
		errs = append(errs, errors.New("output.dir must not be empty"))
	}
	if c.Cluster.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("cluster.timeout must be positive, got %s", c.Cluster.Timeout))
	}
	return errors.Join(errs...)
}
