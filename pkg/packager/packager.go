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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/generator"
	"github.com/rvarago/hopkg/pkg/header"
	"github.com/rvarago/hopkg/pkg/packager/checksum"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/resolver"
)

// Status tells how a package step ended.
type Status string

const (
	// StatusCreated means new package content was written.
	StatusCreated Status = "created"
	// StatusReused means an identical package was already cached.
	StatusReused Status = "reused"
)

// Resolver binds requirements to cached packages.
type Resolver interface {
	ResolveAll(ctx context.Context, reqs []recipe.Requirement, settings recipe.Settings) ([]resolver.Resolved, error)
}

// Result describes a packaged reference.
type Result struct {
	Reference    recipe.Reference    `json:"reference" yaml:"reference"`
	PackageID    string              `json:"packageId" yaml:"packageId"`
	Revision     string              `json:"revision" yaml:"revision"`
	Status       Status              `json:"status" yaml:"status"`
	HeaderOnly   bool                `json:"headerOnly" yaml:"headerOnly"`
	PackageDir   string              `json:"packageDir" yaml:"packageDir"`
	ManifestPath string              `json:"manifestPath" yaml:"manifestPath"`
	Files        []string            `json:"files" yaml:"files"`
	Requires     []resolver.Resolved `json:"requires,omitempty" yaml:"requires,omitempty"`
	Duration     string              `json:"duration" yaml:"duration"`
}

// Packager turns recipes into cached packages.
type Packager struct {
	cache    *cache.Cache
	resolver Resolver
	cfg      *Config
}

// New creates a Packager. A nil cfg uses NewConfig defaults.
func New(c *cache.Cache, r Resolver, cfg *Config) (*Packager, error) {
	if c == nil || r == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "cache and resolver are required")
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid packager config", err)
	}
	return &Packager{cache: c, resolver: r, cfg: cfg}, nil
}

// Create resolves the recipe's requirements, exports it and packages it.
// Resolution runs first so that nothing is copied when a dependency is missing.
func (p *Packager) Create(ctx context.Context, desc *recipe.Descriptor, recipeDir string) (*Result, error) {
	start := time.Now()
	defer func() {
		packageDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := p.create(ctx, desc, recipeDir)
	if err != nil {
		packagesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	packagesTotal.WithLabelValues(string(res.Status)).Inc()
	res.Duration = time.Since(start).Round(time.Millisecond).String()
	return res, nil
}

func (p *Packager) create(ctx context.Context, desc *recipe.Descriptor, recipeDir string) (*Result, error) {
	ref, err := desc.Reference(p.cfg.ReferenceVersion())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "cannot determine package reference", err)
	}

	slog.Info("resolving requirements", "ref", ref.String(), "count", len(desc.Requires))
	resolved, err := p.resolver.ResolveAll(ctx, desc.Requires, p.cfg.Settings())
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeResolution) {
			err = errors.Wrap(errors.ErrCodeResolution, "dependency resolution failed", err)
		}
		return nil, err
	}

	if _, err := p.Export(ctx, desc, recipeDir); err != nil {
		return nil, err
	}
	return p.Package(ctx, desc, ref, resolved)
}

// Export copies the recipe, its exports and the sources matched by
// exportsSources into the cache. No file is copied unless at least one
// source matches.
func (p *Packager) Export(ctx context.Context, desc *recipe.Descriptor, recipeDir string) (recipe.Reference, error) {
	ref, err := desc.Reference(p.cfg.ReferenceVersion())
	if err != nil {
		return recipe.Reference{}, errors.Wrap(errors.ErrCodeInvalidRequest, "cannot determine package reference", err)
	}
	if err := ctx.Err(); err != nil {
		return ref, errors.Wrap(errors.ErrCodeTimeout, "export cancelled", err)
	}

	sources, err := recipe.MatchFiles(recipeDir, desc.ExportsSources)
	if err != nil {
		return ref, errors.Wrap(errors.ErrCodeExport, "failed to match exported sources", err)
	}
	if len(sources) == 0 {
		return ref, errors.NewWithContext(errors.ErrCodeExport, "no source files match exportsSources",
			map[string]any{"ref": ref.String(), "patterns": desc.ExportsSources, "dir": recipeDir})
	}

	exportDir := p.cache.ExportDir(ref)
	sourceDir := p.cache.ExportSourceDir(ref)
	for _, d := range []string{exportDir, sourceDir} {
		if err := resetDir(d); err != nil {
			return ref, errors.Wrap(errors.ErrCodeInternal, "failed to prepare export folder", err)
		}
	}

	if err := copyFile(filepath.Join(recipeDir, recipe.FileName), filepath.Join(exportDir, recipe.FileName)); err != nil {
		return ref, errors.Wrap(errors.ErrCodeExport, "failed to export recipe", err)
	}

	for _, e := range desc.Exports {
		matches, err := recipe.MatchFiles(recipeDir, []string{e})
		if err != nil {
			return ref, errors.Wrap(errors.ErrCodeExport, "failed to match exports", err)
		}
		if len(matches) == 0 {
			slog.Warn("exported file not found, skipping", "ref", ref.String(), "export", e)
			continue
		}
		if err := copyFiles(recipeDir, exportDir, matches); err != nil {
			return ref, errors.Wrap(errors.ErrCodeExport, "failed to copy exports", err)
		}
	}

	if err := copyFiles(recipeDir, sourceDir, sources); err != nil {
		return ref, errors.Wrap(errors.ErrCodeExport, "failed to copy sources", err)
	}

	slog.Info("recipe exported",
		"ref", ref.String(),
		"sources", len(sources),
		"folder", p.cache.RefDir(ref),
	)
	return ref, nil
}

// Package copies the files selected by the package patterns from the
// exported sources into the package folder for the computed package id,
// then adds the exported files at the package root. An identical package
// already in the cache is reused instead of rewritten.
func (p *Packager) Package(ctx context.Context, desc *recipe.Descriptor, ref recipe.Reference, resolved []resolver.Resolved) (*Result, error) {
	id := ComputePackageID(desc, p.cfg.Settings(), resolved)
	pkgDir := p.cache.PackageDir(ref, id)

	srcDir := p.cache.ExportSourceDir(ref)
	if _, err := os.Stat(srcDir); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeExport, "recipe has not been exported", err,
			map[string]any{"ref": ref.String()})
	}

	buildDir := ""
	if !desc.NoCopySource {
		buildDir = p.cache.BuildDir(ref, id)
		if err := p.copySources(srcDir, buildDir); err != nil {
			return nil, err
		}
		if !p.cfg.KeepBuild() {
			defer os.RemoveAll(buildDir)
		}
		srcDir = buildDir
	}

	files, err := recipe.MatchFiles(srcDir, desc.Patterns())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, "failed to match package patterns", err)
	}
	if len(files) == 0 {
		return nil, errors.NewWithContext(errors.ErrCodeExport, "no files match the package patterns",
			map[string]any{"ref": ref.String(), "patterns": desc.Patterns()})
	}
	if desc.HeaderOnly {
		for _, f := range files {
			if !recipe.IsHeaderFile(f) {
				return nil, errors.NewWithContext(errors.ErrCodeExport, "refusing to place a non-header file in a header-only package",
					map[string]any{"ref": ref.String(), "file": f})
			}
		}
	}

	if buildDir != "" {
		if err := p.generate(ctx, desc, buildDir, resolved); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(pkgDir), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create package folder", err)
	}
	staging, err := os.MkdirTemp(filepath.Dir(pkgDir), "."+id+"-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create staging folder", err)
	}
	defer os.RemoveAll(staging)

	if err := copyFiles(srcDir, staging, files); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExport, "failed to copy package files", err)
	}
	if err := p.copyExports(ref, staging); err != nil {
		return nil, err
	}

	all, err := listFiles(staging)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list package files", err)
	}
	abs := make([]string, 0, len(all))
	for _, f := range all {
		abs = append(abs, filepath.Join(staging, filepath.FromSlash(f)))
	}

	sums := staging + ".checksums"
	defer os.Remove(sums)
	if err := checksum.Generate(ctx, staging, abs, sums); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to generate checksums", err)
	}
	rev, err := checksum.Digest(sums)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to compute revision", err)
	}

	result := &Result{
		Reference:    ref,
		PackageID:    id,
		Revision:     rev.String(),
		HeaderOnly:   desc.HeaderOnly,
		PackageDir:   pkgDir,
		ManifestPath: p.cache.ManifestPath(ref, id),
		Files:        all,
		Requires:     resolved,
	}

	if !p.cfg.Force() && p.cache.HasPackage(ref, id) {
		existing, err := p.cache.ReadManifest(ref, id)
		if err == nil && existing.Revision == result.Revision {
			slog.Info("identical package already cached",
				"ref", ref.String(),
				"package_id", id,
				"revision", result.Revision,
			)
			result.Status = StatusReused
			return result, nil
		}
	}

	if err := p.commit(ref, id, staging, sums, p.manifest(desc, result)); err != nil {
		return nil, err
	}
	filesPackaged.Add(float64(len(all)))
	result.Status = StatusCreated

	slog.Info("package created",
		"ref", ref.String(),
		"package_id", id,
		"files", len(all),
		"header_only", desc.HeaderOnly,
	)
	return result, nil
}

// generate writes the recipe's generator output for its requirements into
// the build folder. Files written there are never packaged.
func (p *Packager) generate(ctx context.Context, desc *recipe.Descriptor, buildDir string, resolved []resolver.Resolved) error {
	if len(desc.Generators) == 0 || len(resolved) == 0 {
		return nil
	}

	pkgs := make([]generator.Package, 0, len(resolved))
	for _, r := range resolved {
		if r.Manifest == nil {
			continue
		}
		pkgs = append(pkgs, generator.PackageFromManifest(r.Manifest, p.cache.PackageDir(r.Reference, r.PackageID)))
	}

	for _, name := range desc.Generators {
		g, err := generator.Get(name)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid recipe", err)
		}
		written, err := g.Generate(ctx, buildDir, pkgs)
		if err != nil {
			return errors.Wrap(errors.ErrCodeBuild, fmt.Sprintf("generator %s failed", name), err)
		}
		slog.Debug("generated build files", "generator", name, "files", len(written))
	}
	return nil
}

func (p *Packager) copySources(from, to string) error {
	if err := resetDir(to); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to prepare build folder", err)
	}
	if err := copyTree(from, to); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to copy sources to build folder", err)
	}
	return nil
}

// copyExports places the exported non-source files at the package root.
func (p *Packager) copyExports(ref recipe.Reference, dst string) error {
	exportDir := p.cache.ExportDir(ref)
	files, err := listFiles(exportDir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to list exports", err)
	}
	var exports []string
	for _, f := range files {
		if f != recipe.FileName {
			exports = append(exports, f)
		}
	}
	if err := copyFiles(exportDir, dst, exports); err != nil {
		return errors.Wrap(errors.ErrCodeExport, "failed to copy exports into package", err)
	}
	return nil
}

func (p *Packager) manifest(desc *recipe.Descriptor, res *Result) *cache.Manifest {
	m := &cache.Manifest{
		Reference:     res.Reference,
		PackageID:     res.PackageID,
		Revision:      res.Revision,
		HeaderOnly:    desc.HeaderOnly,
		Description:   desc.Description,
		License:       desc.License,
		URL:           desc.HomepageURL(),
		Requires:      desc.ConsumerRequirements(),
		BuildRequires: desc.BuildRequirements(),
		Files:         res.Files,
		Created:       time.Now().UTC().Truncate(time.Second),
	}
	if !desc.HeaderOnly {
		m.Settings = p.cfg.Settings()
	}
	m.Init(header.KindPackageManifest, header.APIVersion, p.cfg.Version())
	return m
}

// commit moves the staged content and checksums into place and writes the
// manifest last, so a package without a manifest is never considered present.
func (p *Packager) commit(ref recipe.Reference, id, staging, sums string, m *cache.Manifest) error {
	pkgDir := p.cache.PackageDir(ref, id)
	metaDir := p.cache.MetadataDir(ref, id)

	if err := os.RemoveAll(metaDir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to clear metadata", err)
	}
	if err := os.RemoveAll(pkgDir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to clear package folder", err)
	}
	if err := os.Rename(staging, pkgDir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to move package into %s", pkgDir), err)
	}
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create metadata folder", err)
	}
	if err := os.Rename(sums, p.cache.ChecksumsPath(ref, id)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to store checksums", err)
	}
	return p.cache.WriteManifest(m)
}
