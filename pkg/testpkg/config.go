// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package testpkg

import (
	"fmt"

	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// Config holds test-package options. It is immutable once built; use
// NewConfig with options and read values through the getters.
type Config struct {
	// settings is the profile the package under test was built for.
	settings recipe.Settings

	// workDir is where run folders are created. Empty means <test-dir>/build.
	workDir string

	// keepBuild keeps the run folder after the verdict.
	keepBuild bool

	// outputTail bounds the process output kept in results.
	outputTail int

	// version is the hopkg version stamped on results.
	version string
}

// Settings returns the build profile.
func (c *Config) Settings() recipe.Settings {
	return c.settings
}

// WorkDir returns the folder run folders are created in.
func (c *Config) WorkDir() string {
	return c.workDir
}

// KeepBuild returns whether run folders survive the run.
func (c *Config) KeepBuild() bool {
	return c.keepBuild
}

// OutputTail returns how many bytes of process output results keep.
func (c *Config) OutputTail() int {
	return c.outputTail
}

// Version returns the hopkg version.
func (c *Config) Version() string {
	return c.version
}

// Validate checks if the Config has valid settings.
func (c *Config) Validate() error {
	if c.settings.BuildType == "" {
		return fmt.Errorf("build_type setting cannot be empty")
	}
	if c.outputTail < 0 {
		return fmt.Errorf("output tail cannot be negative: %d", c.outputTail)
	}
	return nil
}

// Option configures a Config.
type Option func(*Config)

// WithSettings sets the build profile.
func WithSettings(s recipe.Settings) Option {
	return func(c *Config) {
		c.settings = s
	}
}

// WithWorkDir sets the folder run folders are created in.
func WithWorkDir(dir string) Option {
	return func(c *Config) {
		c.workDir = dir
	}
}

// WithKeepBuild keeps run folders after the verdict.
func WithKeepBuild(enabled bool) Option {
	return func(c *Config) {
		c.keepBuild = enabled
	}
}

// WithOutputTail bounds the process output kept in results.
func WithOutputTail(n int) Option {
	return func(c *Config) {
		c.outputTail = n
	}
}

// WithVersion sets the hopkg version.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.version = version
	}
}

// NewConfig returns a Config with defaults applied before options.
func NewConfig(options ...Option) *Config {
	c := &Config{
		settings:   recipe.DefaultSettings(),
		outputTail: defaults.OutputTailBytes,
		version:    "dev",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
