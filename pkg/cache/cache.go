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

package cache

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/serializer"
)

const (
	exportDir       = "export"
	exportSourceDir = "export_source"
	buildDir        = "build"
	packageDir      = "package"
	metadataDir     = "metadata"

	// ManifestFile is the manifest name inside a metadata folder.
	ManifestFile = "manifest.yaml"

	// ChecksumsFile is the checksum list inside a metadata folder.
	ChecksumsFile = "checksums.txt"

	// noOrigin stands in for an empty user or channel on disk.
	noOrigin = "_"

	dirPerm = 0o755
)

// Cache is the local package store rooted at a directory:
//
//	<root>/<name>/<version>/<user|_>/<channel|_>/
//	    export/              recipe and exported files
//	    export_source/       exported sources
//	    build/<id>/          source copy when the recipe copies sources
//	    package/<id>/        package content
//	    metadata/<id>/       manifest.yaml and checksums.txt
type Cache struct {
	root string
}

// New opens the cache at root, creating it when missing.
func New(root string) (*Cache, error) {
	if root == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "cache root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve cache root", err)
	}
	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create cache at %s", abs), err)
	}
	return &Cache{root: abs}, nil
}

// Root returns the absolute cache root.
func (c *Cache) Root() string {
	return c.root
}

// RefDir returns the folder holding everything for ref.
func (c *Cache) RefDir(ref recipe.Reference) string {
	user, channel := ref.User, ref.Channel
	if user == "" {
		user = noOrigin
	}
	if channel == "" {
		channel = noOrigin
	}
	return filepath.Join(c.root, ref.Name, ref.Version, user, channel)
}

// ExportDir holds the recipe file and exported non-source files.
func (c *Cache) ExportDir(ref recipe.Reference) string {
	return filepath.Join(c.RefDir(ref), exportDir)
}

// ExportSourceDir holds the exported sources.
func (c *Cache) ExportSourceDir(ref recipe.Reference) string {
	return filepath.Join(c.RefDir(ref), exportSourceDir)
}

// BuildDir is the per-package source copy used when sources are copied.
func (c *Cache) BuildDir(ref recipe.Reference, id string) string {
	return filepath.Join(c.RefDir(ref), buildDir, id)
}

// PackageDir holds the package content for one package id.
func (c *Cache) PackageDir(ref recipe.Reference, id string) string {
	return filepath.Join(c.RefDir(ref), packageDir, id)
}

// MetadataDir holds the manifest and checksums for one package id.
func (c *Cache) MetadataDir(ref recipe.Reference, id string) string {
	return filepath.Join(c.RefDir(ref), metadataDir, id)
}

// ManifestPath returns the manifest location for one package id.
func (c *Cache) ManifestPath(ref recipe.Reference, id string) string {
	return filepath.Join(c.MetadataDir(ref, id), ManifestFile)
}

// ChecksumsPath returns the checksum list location for one package id.
func (c *Cache) ChecksumsPath(ref recipe.Reference, id string) string {
	return filepath.Join(c.MetadataDir(ref, id), ChecksumsFile)
}

// HasPackage reports whether a complete package (content and manifest) exists.
func (c *Cache) HasPackage(ref recipe.Reference, id string) bool {
	if info, err := os.Stat(c.PackageDir(ref, id)); err != nil || !info.IsDir() {
		return false
	}
	_, err := os.Stat(c.ManifestPath(ref, id))
	return err == nil
}

// ReadManifest loads the manifest of one package.
func (c *Cache) ReadManifest(ref recipe.Reference, id string) (*Manifest, error) {
	path := c.ManifestPath(ref, id)
	if _, err := os.Stat(path); err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewWithContext(errors.ErrCodeNotFound, "package not found in cache",
				map[string]any{"ref": ref.String(), "package_id": id})
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to stat manifest", err)
	}

	m, err := serializer.FromFile[Manifest](path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to read manifest", err)
	}
	return m, nil
}

// WriteManifest stores m in the metadata folder of its package.
func (c *Cache) WriteManifest(m *Manifest) error {
	if m == nil || m.PackageID == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "manifest with a package id is required")
	}
	dir := c.MetadataDir(m.Reference, m.PackageID)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to create metadata folder", err)
	}
	if err := serializer.WriteYAMLFile(c.ManifestPath(m.Reference, m.PackageID), m); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to write manifest", err)
	}
	return nil
}

// ListPackages returns the manifests stored for ref, oldest first.
// Package folders without a manifest are incomplete and skipped.
func (c *Cache) ListPackages(ref recipe.Reference) ([]*Manifest, error) {
	entries, err := os.ReadDir(filepath.Join(c.RefDir(ref), metadataDir))
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to list packages", err)
	}

	var out []*Manifest
	for _, e := range entries {
		if !e.IsDir() || !c.HasPackage(ref, e.Name()) {
			continue
		}
		m, err := c.ReadManifest(ref, e.Name())
		if err != nil {
			slog.Warn("skipping unreadable manifest", "ref", ref.String(), "package_id", e.Name(), "error", err)
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Created.Before(out[j].Created)
	})
	return out, nil
}

// FindPackage returns the newest package of ref that serves settings.
func (c *Cache) FindPackage(ref recipe.Reference, settings recipe.Settings) (*Manifest, error) {
	pkgs, err := c.ListPackages(ref)
	if err != nil {
		return nil, err
	}
	for i := len(pkgs) - 1; i >= 0; i-- {
		if pkgs[i].MatchesSettings(settings) {
			return pkgs[i], nil
		}
	}
	return nil, errors.NewWithContext(errors.ErrCodeNotFound, "no matching package in cache",
		map[string]any{"ref": ref.String()})
}

// ListReferences returns every reference with at least one exported recipe
// or package, sorted.
func (c *Cache) ListReferences() ([]recipe.Reference, error) {
	// <root>/<name>/<version>/<user>/<channel>
	matches, err := filepath.Glob(filepath.Join(c.root, "*", "*", "*", "*"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to scan cache", err)
	}

	var refs []recipe.Reference
	for _, m := range matches {
		if info, err := os.Stat(m); err != nil || !info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(c.root, m)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if len(parts) != 4 {
			continue
		}
		ref := recipe.Reference{Name: parts[0], Version: parts[1]}
		if parts[2] != noOrigin {
			ref.User, ref.Channel = parts[2], parts[3]
		}
		if ref.Validate() != nil {
			continue
		}
		refs = append(refs, ref)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Less(refs[j]) })
	return refs, nil
}

// RemovePackage deletes one package's content and metadata.
func (c *Cache) RemovePackage(ref recipe.Reference, id string) error {
	for _, dir := range []string{c.PackageDir(ref, id), c.MetadataDir(ref, id), c.BuildDir(ref, id)} {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to remove %s", dir), err)
		}
	}
	return nil
}

// RemoveReference deletes everything stored for ref.
func (c *Cache) RemoveReference(ref recipe.Reference) error {
	if err := os.RemoveAll(c.RefDir(ref)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to remove reference", err)
	}
	return nil
}
