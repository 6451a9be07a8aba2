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
	"os"
	"path/filepath"
	"slices"

	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/serializer"
)

// ResolvePath returns the recipe file for path, which may be either the file
// itself or the directory holding FileName. Recipes are exported under
// FileName, so a file path with any other name is rejected.
func ResolvePath(path string) (file string, dir string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("recipe %q not found", path), err)
	}
	if info.IsDir() {
		file = filepath.Join(path, FileName)
		if _, err := os.Stat(file); err != nil {
			return "", "", errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("no %s in %q", FileName, path), err)
		}
		return file, path, nil
	}
	if filepath.Base(path) != FileName {
		return "", "", errors.NewWithContext(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("recipe file must be named %s", FileName), map[string]any{"path": path})
	}
	return path, filepath.Dir(path), nil
}

// Load reads, schema-checks and validates the package recipe at path.
func Load(path string) (*Descriptor, string, error) {
	file, dir, err := ResolvePath(path)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, "failed to read recipe", err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid package recipe", err,
			map[string]any{"path": file})
	}
	return d, dir, nil
}

// Parse decodes and validates a package recipe document.
func Parse(data []byte) (*Descriptor, error) {
	if err := ValidateRecipeYAML(data); err != nil {
		return nil, err
	}

	d, err := serializer.FromBytes[Descriptor](serializer.FormatYAML, data)
	if err != nil {
		return nil, err
	}

	d.normalize()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadTest reads, schema-checks and validates the test-package recipe at path.
func LoadTest(path string) (*TestDescriptor, string, error) {
	file, dir, err := ResolvePath(path)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInternal, "failed to read test recipe", err)
	}

	t, err := ParseTest(data)
	if err != nil {
		return nil, "", errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid test recipe", err,
			map[string]any{"path": file})
	}
	return t, dir, nil
}

// ParseTest decodes and validates a test-package recipe document.
func ParseTest(data []byte) (*TestDescriptor, error) {
	if err := ValidateTestYAML(data); err != nil {
		return nil, err
	}

	t, err := serializer.FromBytes[TestDescriptor](serializer.FormatYAML, data)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (d *Descriptor) normalize() {
	if d.URL == "" {
		d.URL = d.Homepage
	}

	seen := make(map[string]bool, len(d.Topics))
	topics := d.Topics[:0]
	for _, t := range d.Topics {
		if !seen[t] {
			seen[t] = true
			topics = append(topics, t)
		}
	}
	d.Topics = topics
}

// Validate checks the invariants the schema cannot express.
func (d *Descriptor) Validate() error {
	if !namePattern.MatchString(d.Name) {
		return fmt.Errorf("invalid package name %q", d.Name)
	}
	if (d.User == "") != (d.Channel == "") {
		return fmt.Errorf("user and channel must be set together")
	}
	if d.Version != "" {
		if _, err := d.Reference(""); err != nil {
			return err
		}
	}

	for _, p := range d.ExportsSources {
		if _, err := CompilePattern(p); err != nil {
			return err
		}
	}

	for _, p := range d.Patterns() {
		if _, err := CompilePattern(p); err != nil {
			return err
		}
		if d.HeaderOnly && !IsHeaderPattern(p) {
			return fmt.Errorf("package pattern %q may select non-header files in a header-only package", p)
		}
	}

	seen := make(map[string]bool, len(d.Requires))
	for i, r := range d.Requires {
		ref, err := r.Reference()
		if err != nil {
			return fmt.Errorf("requires[%d]: %w", i, err)
		}
		if !r.Scope.IsValid() {
			return fmt.Errorf("requires[%d]: scope %q must be %q or %q", i, r.Scope, ScopeBuildOnly, ScopeTransitive)
		}
		if ref.Name == d.Name {
			return fmt.Errorf("requires[%d]: package %s cannot require itself", i, d.Name)
		}
		if seen[ref.Name] {
			return fmt.Errorf("requires[%d]: %s is required more than once", i, ref.Name)
		}
		seen[ref.Name] = true
	}

	for _, g := range d.Generators {
		if !slices.Contains(KnownGenerators, g) {
			return fmt.Errorf("unknown generator %q", g)
		}
	}
	return nil
}

// Validate checks the test recipe beyond its schema.
func (t *TestDescriptor) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("test recipe name is required")
	}
	if filepath.Base(t.ExecutableName()) != t.ExecutableName() {
		return fmt.Errorf("executable %q must be a bare file name", t.ExecutableName())
	}
	switch t.Build.Tool {
	case BuildToolCMake:
	case BuildToolCommand:
		if len(t.Build.Build) == 0 {
			return fmt.Errorf("build tool %q needs a build command", t.Build.Tool)
		}
	default:
		return fmt.Errorf("unknown build tool %q", t.Build.Tool)
	}
	for _, g := range t.Generators {
		if !slices.Contains(KnownGenerators, g) {
			return fmt.Errorf("unknown generator %q", g)
		}
	}
	return nil
}
