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

package packager

import (
	"fmt"

	"github.com/rvarago/hopkg/pkg/recipe"
)

// Config holds packaging options. It is immutable once built; use NewConfig
// with options and read values through the getters.
type Config struct {
	// settings is the profile the package is built for.
	settings recipe.Settings

	// referenceVersion supplies the version when the recipe leaves it out.
	referenceVersion string

	// force repackages even when an identical package is cached.
	force bool

	// keepBuild keeps the build-folder copy of the sources.
	keepBuild bool

	// version is the hopkg version stamped on manifests.
	version string
}

// Settings returns the build profile.
func (c *Config) Settings() recipe.Settings {
	return c.settings
}

// ReferenceVersion returns the externally supplied package version.
func (c *Config) ReferenceVersion() string {
	return c.referenceVersion
}

// Force returns whether identical cached packages are rebuilt.
func (c *Config) Force() bool {
	return c.force
}

// KeepBuild returns whether the source copy is kept after packaging.
func (c *Config) KeepBuild() bool {
	return c.keepBuild
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
	if c.version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	return nil
}

type Option func(*Config)

// WithSettings sets the build profile.
func WithSettings(s recipe.Settings) Option {
	return func(c *Config) {
		c.settings = s
	}
}

// WithReferenceVersion sets the version used when the recipe has none.
func WithReferenceVersion(v string) Option {
	return func(c *Config) {
		c.referenceVersion = v
	}
}

// WithForce sets whether identical cached packages are rebuilt.
func WithForce(enabled bool) Option {
	return func(c *Config) {
		c.force = enabled
	}
}

// WithKeepBuild sets whether the build-folder source copy is kept.
func WithKeepBuild(enabled bool) Option {
	return func(c *Config) {
		c.keepBuild = enabled
	}
}

// WithVersion sets the hopkg version stamped on manifests.
func WithVersion(version string) Option {
	return func(c *Config) {
		c.version = version
	}
}

// NewConfig returns a Config with default values.
func NewConfig(options ...Option) *Config {
	c := &Config{
		settings: recipe.DefaultSettings(),
		version:  "dev",
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}
