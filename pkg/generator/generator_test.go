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

package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/recipe"
)

func TestGet(t *testing.T) {
	g, err := Get(recipe.GeneratorCMakeFindPackage)
	require.NoError(t, err)
	assert.Equal(t, recipe.GeneratorCMakeFindPackage, g.Name())

	_, err = Get("premake")
	require.Error(t, err)
}

func TestFindModule(t *testing.T) {
	p := Package{
		Reference:  recipe.MustParseReference("kitten/7.0.0"),
		IncludeDir: "/cache/kitten/7.0.0/_/_/package/abc/include",
		Requires:   []string{"fmt"},
	}

	out, err := FindModule(p, cases.Upper(language.Und))
	require.NoError(t, err)

	for _, want := range []string{
		"set(kitten_FOUND TRUE)",
		`set(kitten_VERSION "7.0.0")`,
		`set(kitten_INCLUDE_DIRS "/cache/kitten/7.0.0/_/_/package/abc/include")`,
		`set(KITTEN_INCLUDE_DIRS "/cache/kitten/7.0.0/_/_/package/abc/include")`,
		"add_library(kitten::kitten INTERFACE IMPORTED)",
		"find_package(fmt REQUIRED MODULE)",
		`INTERFACE_LINK_LIBRARIES "fmt::fmt"`,
	} {
		assert.Contains(t, out, want)
	}
}

func TestFindModule_NoRequires(t *testing.T) {
	p := Package{Reference: recipe.MustParseReference("catch2/2.11.0"), IncludeDir: "/x"}
	out, err := FindModule(p, cases.Upper(language.Und))
	require.NoError(t, err)
	assert.Contains(t, out, "CATCH2_INCLUDE_DIRS")
	assert.NotContains(t, out, "INTERFACE_LINK_LIBRARIES")
	assert.NotContains(t, out, "find_package(")
}

func TestCMakeFindPackage_Generate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	pkgs := []Package{
		{Reference: recipe.MustParseReference("kitten/7.0.0"), IncludeDir: "/a"},
		{Reference: recipe.MustParseReference("fmt/10.0.0"), IncludeDir: "/b"},
	}

	files, err := (&CMakeFindPackage{}).Generate(context.Background(), dir, pkgs)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "Findkitten.cmake"), filepath.Join(dir, "Findfmt.cmake")}, files)
	for _, f := range files {
		assert.FileExists(t, f)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&CMakeFindPackage{}).Generate(ctx, dir, pkgs)
	require.Error(t, err)
}

func TestPackageFromManifest(t *testing.T) {
	pkgDir := t.TempDir()
	m := &cache.Manifest{
		Reference: recipe.MustParseReference("kitten/7.0.0"),
		Requires: []recipe.Requirement{
			{Ref: "range-v3/0.12.0", Scope: recipe.ScopeTransitive},
			{Ref: "fmt/10.0.0", Scope: recipe.ScopeTransitive},
		},
		BuildRequires: []recipe.Requirement{{Ref: "catch2/2.11.0", Scope: recipe.ScopeBuildOnly}},
	}

	p := PackageFromManifest(m, pkgDir)
	assert.Equal(t, pkgDir, p.IncludeDir, "falls back to the package root")
	assert.Equal(t, []string{"fmt", "range-v3"}, p.Requires)

	require.NoError(t, os.MkdirAll(filepath.Join(pkgDir, "include"), 0o755))
	p = PackageFromManifest(m, pkgDir)
	assert.Equal(t, filepath.Join(pkgDir, "include"), p.IncludeDir)
}
