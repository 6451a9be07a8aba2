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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvarago/hopkg/pkg/errors"
)

const minimalRecipe = `kind: PackageRecipe
apiVersion: hopkg.dev/v1alpha1
name: foo
version: "1.0.0"
exportsSources: ["include/*"]
headerOnly: true
`

func TestLoad_Kitten(t *testing.T) {
	d, dir, err := Load("testdata/kitten")
	require.NoError(t, err)

	assert.Equal(t, "testdata/kitten", dir)
	assert.Equal(t, "kitten", d.Name)
	assert.Empty(t, d.Version)
	assert.Equal(t, "Rafael Varago (rvarago)", d.Author)
	assert.Equal(t, "MIT", d.License)
	assert.Equal(t, "https://github.com/rvarago/kitten", d.HomepageURL())
	assert.Equal(t, []string{"README.md", "LICENSE"}, d.Exports)
	assert.True(t, d.NoCopySource)
	assert.True(t, d.HeaderOnly)
	assert.Equal(t, []string{"*.h"}, d.Patterns())
	assert.Equal(t, []string{GeneratorCMakeFindPackage}, d.Generators)

	require.Len(t, d.BuildRequirements(), 1)
	assert.Equal(t, "catch2/2.11.0", d.BuildRequirements()[0].Ref)
	assert.Empty(t, d.ConsumerRequirements())
}

func TestLoad_FilePath(t *testing.T) {
	d, dir, err := Load(filepath.Join("testdata", "kitten", FileName))
	require.NoError(t, err)
	assert.Equal(t, "kitten", d.Name)
	assert.Equal(t, filepath.Join("testdata", "kitten"), dir)
}

func TestLoad_OtherFileNameRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalRecipe), 0o600))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestLoad_Missing(t *testing.T) {
	_, _, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestLoad_InvalidIsInvalidRequest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("kind: PackageRecipe\n"), 0o600))

	_, _, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
}

func TestLoadTest_Kitten(t *testing.T) {
	td, _, err := LoadTest("testdata/kitten/test_package")
	require.NoError(t, err)

	assert.Equal(t, "kitten_test_package", td.Name)
	assert.Equal(t, "kitten_test_package", td.ExecutableName())
	assert.Equal(t, BuildToolCMake, td.Build.Tool)
	assert.Equal(t, []string{GeneratorCMakeFindPackage}, td.Generators)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "minimal",
			doc:  minimalRecipe,
		},
		{
			name:    "wrong kind",
			doc:     strings.Replace(minimalRecipe, "PackageRecipe", "TestRecipe", 1),
			wantErr: "/kind",
		},
		{
			name:    "unknown field",
			doc:     minimalRecipe + "options: {shared: true}\n",
			wantErr: "schema validation failed",
		},
		{
			name:    "bad name",
			doc:     strings.Replace(minimalRecipe, "name: foo", "name: Foo", 1),
			wantErr: "/name",
		},
		{
			name:    "no export sources",
			doc:     strings.Replace(minimalRecipe, `exportsSources: ["include/*"]`, "exportsSources: []", 1),
			wantErr: "/exportsSources",
		},
		{
			name:    "requirement without scope",
			doc:     minimalRecipe + "requires:\n  - ref: catch2/2.11.0\n",
			wantErr: "scope",
		},
		{
			name:    "requirement with unknown scope",
			doc:     minimalRecipe + "requires:\n  - ref: catch2/2.11.0\n    scope: private\n",
			wantErr: "scope",
		},
		{
			name:    "malformed requirement",
			doc:     minimalRecipe + "requires:\n  - ref: catch2\n    scope: transitive\n",
			wantErr: "requires[0]",
		},
		{
			name:    "self requirement",
			doc:     minimalRecipe + "requires:\n  - ref: foo/0.9\n    scope: transitive\n",
			wantErr: "cannot require itself",
		},
		{
			name:    "duplicate requirement",
			doc:     minimalRecipe + "requires:\n  - ref: a_b/1\n    scope: transitive\n  - ref: a_b/2\n    scope: build_only\n",
			wantErr: "more than once",
		},
		{
			name:    "header-only with catch-all pattern",
			doc:     minimalRecipe + `packagePatterns: ["*"]` + "\n",
			wantErr: "non-header",
		},
		{
			name:    "header-only with archive pattern",
			doc:     minimalRecipe + `packagePatterns: ["lib/*.a"]` + "\n",
			wantErr: "non-header",
		},
		{
			name:    "user without channel",
			doc:     minimalRecipe + "user: rvarago\n",
			wantErr: "channel",
		},
		{
			name:    "unknown generator",
			doc:     minimalRecipe + "generators: [premake]\n",
			wantErr: "/generators",
		},
		{
			name:    "empty",
			doc:     "",
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "foo", d.Name)
		})
	}
}

func TestParse_NormalizesTopicsAndURL(t *testing.T) {
	doc := minimalRecipe + "homepage: https://example.com/foo\ntopics: [a, b, a]\n"
	d, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, d.Topics)
	assert.Equal(t, "https://example.com/foo", d.URL)
}

func TestDescriptor_Reference(t *testing.T) {
	d := &Descriptor{Name: "kitten"}

	_, err := d.Reference("")
	require.Error(t, err, "version is implied externally")

	ref, err := d.Reference("7.0.0")
	require.NoError(t, err)
	assert.Equal(t, "kitten/7.0.0", ref.String())

	d.Version = "7.0.0"
	d.User, d.Channel = "rvarago", "stable"
	ref, err = d.Reference("")
	require.NoError(t, err)
	assert.Equal(t, "kitten/7.0.0@rvarago/stable", ref.String())

	_, err = d.Reference("8.0.0")
	require.Error(t, err)
}

func TestRequirementsByScope(t *testing.T) {
	d := &Descriptor{
		Name: "foo",
		Requires: []Requirement{
			{Ref: "catch2/2.11.0", Scope: ScopeBuildOnly},
			{Ref: "fmt/10.0.0", Scope: ScopeTransitive},
			{Ref: "doctest/2.4.0", Scope: ScopeBuildOnly},
		},
	}

	assert.Equal(t, []Requirement{{Ref: "fmt/10.0.0", Scope: ScopeTransitive}}, d.ConsumerRequirements())
	assert.Len(t, d.BuildRequirements(), 2)
}

func TestParseTest(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "cmake",
			doc:  "kind: TestRecipe\napiVersion: hopkg.dev/v1alpha1\nname: t\nbuild: {tool: cmake}\n",
		},
		{
			name: "command",
			doc:  "kind: TestRecipe\napiVersion: hopkg.dev/v1alpha1\nname: t\nbuild: {tool: command, build: [make]}\n",
		},
		{
			name:    "command without build",
			doc:     "kind: TestRecipe\napiVersion: hopkg.dev/v1alpha1\nname: t\nbuild: {tool: command}\n",
			wantErr: "build",
		},
		{
			name:    "unknown tool",
			doc:     "kind: TestRecipe\napiVersion: hopkg.dev/v1alpha1\nname: t\nbuild: {tool: bazel}\n",
			wantErr: "/build/tool",
		},
		{
			name:    "executable with path",
			doc:     "kind: TestRecipe\napiVersion: hopkg.dev/v1alpha1\nname: t\nexecutable: bin/t\nbuild: {tool: cmake}\n",
			wantErr: "bare file name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTest([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestIsHeaderFile(t *testing.T) {
	for name, want := range map[string]bool{
		"kitten.h":      true,
		"a/b/c.HPP":     true,
		"x.hh":          true,
		"x.hxx":         true,
		"x.cpp":         false,
		"libkitten.a":   false,
		"README.md":     false,
		"header_h":      false,
		"include/dir.h": true,
	} {
		assert.Equal(t, want, IsHeaderFile(name), name)
	}
}
