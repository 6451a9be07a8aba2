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
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/recipe"
)

//go:embed templates/Find.cmake.tmpl
var findModuleTemplate string

var findModule = template.Must(template.New("Find.cmake").Parse(findModuleTemplate))

// Package is what a generator needs to know about one consumable package.
type Package struct {
	Reference  recipe.Reference
	IncludeDir string
	// Requires names the packages this one hands to its consumers.
	Requires []string
}

// PackageFromManifest describes a cached package for generators. The include
// folder is the package's include/ when present, else the package root.
func PackageFromManifest(m *cache.Manifest, pkgDir string) Package {
	include := filepath.Join(pkgDir, "include")
	if info, err := os.Stat(include); err != nil || !info.IsDir() {
		include = pkgDir
	}

	var requires []string
	for _, r := range m.Requires {
		if r.Scope != recipe.ScopeTransitive {
			continue
		}
		if ref, err := r.Reference(); err == nil {
			requires = append(requires, ref.Name)
		}
	}
	sort.Strings(requires)

	return Package{Reference: m.Reference, IncludeDir: include, Requires: requires}
}

// Generator writes build-system integration files for a set of packages.
type Generator interface {
	// Name is the generator name used in recipes.
	Name() string
	// Generate writes files into dir and returns their paths.
	Generate(ctx context.Context, dir string, pkgs []Package) ([]string, error)
}

// Get returns the generator registered under name.
func Get(name string) (Generator, error) {
	switch name {
	case recipe.GeneratorCMakeFindPackage:
		return &CMakeFindPackage{}, nil
	default:
		return nil, fmt.Errorf("unknown generator %q", name)
	}
}

// CMakeFindPackage writes one Find<name>.cmake module per package, defining
// <name>_FOUND, <name>_INCLUDE_DIRS, the upper-cased <NAME>_INCLUDE_DIRS and
// an INTERFACE imported target <name>::<name>.
type CMakeFindPackage struct{}

// Name implements Generator.
func (g *CMakeFindPackage) Name() string {
	return recipe.GeneratorCMakeFindPackage
}

// Generate implements Generator.
func (g *CMakeFindPackage) Generate(ctx context.Context, dir string, pkgs []Package) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create generator folder: %w", err)
	}

	upper := cases.Upper(language.Und)
	files := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}

		content, err := FindModule(p, upper)
		if err != nil {
			return nil, err
		}

		path := filepath.Join(dir, "Find"+p.Reference.Name+".cmake")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		slog.Debug("find module generated", "package", p.Reference.String(), "path", path)
		files = append(files, path)
	}
	return files, nil
}

// FindModule renders the find module for p.
func FindModule(p Package, upper cases.Caser) (string, error) {
	links := make([]string, 0, len(p.Requires))
	for _, r := range p.Requires {
		links = append(links, r+"::"+r)
	}

	data := map[string]any{
		"Reference":  p.Reference.String(),
		"Name":       p.Reference.Name,
		"Upper":      upper.String(p.Reference.Name),
		"Version":    p.Reference.Version,
		"IncludeDir": filepath.ToSlash(p.IncludeDir),
		"Requires":   p.Requires,
		"Links":      strings.Join(links, ";"),
	}

	var buf bytes.Buffer
	if err := findModule.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render find module for %s: %w", p.Reference, err)
	}
	return buf.String(), nil
}
