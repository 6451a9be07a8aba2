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

package recipe

import (
	"fmt"
	"path"
	"strings"

	"github.com/rvarago/hopkg/pkg/header"
)

// Default file names for recipes.
const (
	// FileName is the recipe file looked up in a recipe or test-package directory.
	FileName = "hopkg.yaml"

	// TestPackageDir is the conventional test-package directory next to a recipe.
	TestPackageDir = "test_package"

	// GeneratorCMakeFindPackage emits Find<name>.cmake modules.
	GeneratorCMakeFindPackage = "cmake_find_package"
)

// KnownGenerators lists the generator names a recipe may request.
var KnownGenerators = []string{GeneratorCMakeFindPackage}

// DefaultPackagePatterns selects header files only.
var DefaultPackagePatterns = []string{"*.h"}

// HeaderExtensions are the file extensions a header-only package may contain.
var HeaderExtensions = []string{".h", ".hpp", ".hh", ".hxx"}

// Scope tells whether a requirement is exposed to consumers of the package.
type Scope string

const (
	// ScopeBuildOnly requirements are needed to build or test the package
	// itself and never reach downstream consumers.
	ScopeBuildOnly Scope = "build_only"

	// ScopeTransitive requirements are also required by every consumer.
	ScopeTransitive Scope = "transitive"
)

// IsValid reports whether s is one of the known scopes.
func (s Scope) IsValid() bool {
	return s == ScopeBuildOnly || s == ScopeTransitive
}

// Requirement declares a dependency on another package.
type Requirement struct {
	Ref   string `json:"ref" yaml:"ref"`
	Scope Scope  `json:"scope" yaml:"scope"`
}

// Reference parses the requirement's package reference.
func (r Requirement) Reference() (Reference, error) {
	return ParseReference(r.Ref)
}

// Descriptor is the package recipe: identity, metadata, what to export and
// how to package it.
type Descriptor struct {
	header.Header `json:",inline" yaml:",inline"`

	Name        string   `json:"name" yaml:"name"`
	Version     string   `json:"version,omitempty" yaml:"version,omitempty"`
	User        string   `json:"user,omitempty" yaml:"user,omitempty"`
	Channel     string   `json:"channel,omitempty" yaml:"channel,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string   `json:"author,omitempty" yaml:"author,omitempty"`
	Topics      []string `json:"topics,omitempty" yaml:"topics,omitempty"`
	License     string   `json:"license,omitempty" yaml:"license,omitempty"`
	Homepage    string   `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	URL         string   `json:"url,omitempty" yaml:"url,omitempty"`

	// Exports are non-source files shipped with the recipe and the package.
	Exports []string `json:"exports,omitempty" yaml:"exports,omitempty"`

	// ExportsSources are glob patterns selecting the sources to export.
	ExportsSources []string `json:"exportsSources" yaml:"exportsSources"`

	// NoCopySource packages straight from the exported sources instead of a
	// build-folder copy. Valid only because nothing compiles or edits them.
	NoCopySource bool `json:"noCopySource,omitempty" yaml:"noCopySource,omitempty"`

	// HeaderOnly collapses the package identity across settings.
	HeaderOnly bool `json:"headerOnly,omitempty" yaml:"headerOnly,omitempty"`

	// PackagePatterns select which source files land in the package.
	PackagePatterns []string `json:"packagePatterns,omitempty" yaml:"packagePatterns,omitempty"`

	Requires   []Requirement `json:"requires,omitempty" yaml:"requires,omitempty"`
	Generators []string      `json:"generators,omitempty" yaml:"generators,omitempty"`
}

// Reference returns the package reference, using versionOverride when the
// recipe leaves its version to be supplied externally.
func (d *Descriptor) Reference(versionOverride string) (Reference, error) {
	ver := d.Version
	if versionOverride != "" {
		if d.Version != "" && d.Version != versionOverride {
			return Reference{}, fmt.Errorf("version %q conflicts with recipe version %q", versionOverride, d.Version)
		}
		ver = versionOverride
	}
	if ver == "" {
		return Reference{}, fmt.Errorf("recipe %s has no version; pass one explicitly", d.Name)
	}
	ref := Reference{Name: d.Name, Version: ver, User: d.User, Channel: d.Channel}
	return ref, ref.Validate()
}

// Patterns returns the package patterns, defaulting to headers.
func (d *Descriptor) Patterns() []string {
	if len(d.PackagePatterns) == 0 {
		return DefaultPackagePatterns
	}
	return d.PackagePatterns
}

// HomepageURL returns url, falling back to homepage.
func (d *Descriptor) HomepageURL() string {
	if d.URL != "" {
		return d.URL
	}
	return d.Homepage
}

// RequirementsByScope returns the requirements with the given scope, in declaration order.
func (d *Descriptor) RequirementsByScope(scope Scope) []Requirement {
	var out []Requirement
	for _, r := range d.Requires {
		if r.Scope == scope {
			out = append(out, r)
		}
	}
	return out
}

// ConsumerRequirements are the requirements visible to downstream consumers.
func (d *Descriptor) ConsumerRequirements() []Requirement {
	return d.RequirementsByScope(ScopeTransitive)
}

// BuildRequirements are needed only to build or test this package.
func (d *Descriptor) BuildRequirements() []Requirement {
	return d.RequirementsByScope(ScopeBuildOnly)
}

// IsHeaderFile reports whether name has a header extension.
func IsHeaderFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, h := range HeaderExtensions {
		if ext == h {
			return true
		}
	}
	return false
}

// BuildTool names the program that configures and compiles a test package.
type BuildTool string

const (
	// BuildToolCMake runs "cmake <src>" then "cmake --build .".
	BuildToolCMake BuildTool = "cmake"
	// BuildToolCommand runs the argv lists given in the recipe.
	BuildToolCommand BuildTool = "command"
)

// BuildSpec describes how a test package is configured and compiled.
// Command arguments may use {source}, {build} and {build_type} placeholders.
type BuildSpec struct {
	Tool      BuildTool `json:"tool" yaml:"tool"`
	Configure []string  `json:"configure,omitempty" yaml:"configure,omitempty"`
	Build     []string  `json:"build,omitempty" yaml:"build,omitempty"`
}

// TestDescriptor is the test-package recipe: a throwaway consumer of the
// package under test. Its executable is named after the recipe.
type TestDescriptor struct {
	header.Header `json:",inline" yaml:",inline"`

	Name       string    `json:"name" yaml:"name"`
	Author     string    `json:"author,omitempty" yaml:"author,omitempty"`
	Generators []string  `json:"generators,omitempty" yaml:"generators,omitempty"`
	Build      BuildSpec `json:"build" yaml:"build"`

	// Executable overrides the program run by the test step; defaults to Name.
	Executable string `json:"executable,omitempty" yaml:"executable,omitempty"`
}

// ExecutableName returns the program the test step runs.
func (t *TestDescriptor) ExecutableName() string {
	if t.Executable != "" {
		return t.Executable
	}
	return t.Name
}
