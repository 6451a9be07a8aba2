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

package oci

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/content/file"
	"oras.land/oras-go/v2/errdef"

	apperrors "github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// ArtifactType is the media type of hopkg package artifacts.
const ArtifactType = "application/vnd.hopkg.package.v1"

// Layer media types and names inside a package artifact.
const (
	MediaTypeManifest  = "application/vnd.hopkg.manifest.v1+yaml"
	MediaTypeChecksums = "text/plain"

	PackageLayerName   = "package"
	ManifestLayerName  = "manifest.yaml"
	ChecksumsLayerName = "checksums.txt"
)

// Manifest annotations carried by every package artifact.
const (
	AnnotationReference = "dev.hopkg.package.reference"
	AnnotationPackageID = "dev.hopkg.package.id"
	AnnotationRevision  = "dev.hopkg.package.revision"
)

// Artifact is a package as stored in the cache: its content folder and the
// metadata folder holding manifest.yaml and checksums.txt.
type Artifact struct {
	PackageDir  string
	MetadataDir string
	Reference   recipe.Reference
	PackageID   string
	Revision    string
	// HeaderOnly packages share one id across settings; other packages are
	// also tagged by package id so each variant stays addressable.
	HeaderOnly bool
	// Created is recorded as the manifest creation time so pushes of the
	// same package are reproducible.
	Created time.Time
}

// PushResult contains the result of a successful push.
type PushResult struct {
	// Digest is the SHA256 digest of the pushed manifest.
	Digest string
	// Reference is the full image reference (registry/repository:tag).
	Reference string
	// PackageTag is the per-package-id tag, empty for header-only packages.
	PackageTag string
}

// PullResult contains the result of a successful pull.
type PullResult struct {
	Digest string
	// Dir holds package/, manifest.yaml and checksums.txt.
	Dir string
}

// Push uploads a package artifact to the remote.
func Push(ctx context.Context, r *Remote, a Artifact) (*PushResult, error) {
	repo, err := r.repository(a.Reference)
	if err != nil {
		return nil, err
	}

	slog.Info("pushing package",
		"ref", a.Reference.String(),
		"package_id", a.PackageID,
		"remote", r.Name,
		"image", r.ImageReference(a.Reference),
	)

	desc, err := pushArtifact(ctx, a, repo, TagFor(a.Reference))
	if err != nil {
		return nil, err
	}
	res := &PushResult{
		Digest:    desc.Digest.String(),
		Reference: r.ImageReference(a.Reference),
	}
	if !a.HeaderOnly {
		res.PackageTag = TagForPackage(a.Reference, a.PackageID)
	}
	return res, nil
}

func pushArtifact(ctx context.Context, a Artifact, dst oras.Target, tag string) (ociv1.Descriptor, error) {
	if a.PackageID == "" {
		return ociv1.Descriptor{}, apperrors.New(apperrors.ErrCodeInvalidRequest, "package id is required to push")
	}

	pkgDir, err := filepath.Abs(a.PackageDir)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve package folder", err)
	}
	metaDir, err := filepath.Abs(a.MetadataDir)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to resolve metadata folder", err)
	}

	storeDir, err := os.MkdirTemp("", "hopkg-push-*")
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create temp directory", err)
	}
	defer os.RemoveAll(storeDir)

	fs, err := file.New(storeDir)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	// Make tars deterministic for reproducible pushes
	fs.TarReproducible = true

	layers := make([]ociv1.Descriptor, 0, 3)
	for _, l := range []struct {
		name, mediaType, path string
	}{
		{PackageLayerName, ociv1.MediaTypeImageLayerGzip, pkgDir},
		{ManifestLayerName, MediaTypeManifest, filepath.Join(metaDir, ManifestLayerName)},
		{ChecksumsLayerName, MediaTypeChecksums, filepath.Join(metaDir, ChecksumsLayerName)},
	} {
		desc, addErr := fs.Add(ctx, l.name, l.mediaType, l.path)
		if addErr != nil {
			return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal,
				fmt.Sprintf("failed to add %s to store", l.name), addErr)
		}
		layers = append(layers, desc)
	}

	created := a.Created
	if created.IsZero() {
		created = time.Now()
	}
	packOpts := oras.PackManifestOptions{
		Layers: layers,
		ManifestAnnotations: map[string]string{
			ociv1.AnnotationCreated: created.UTC().Format(time.RFC3339),
			ociv1.AnnotationVersion: a.Reference.Version,
			AnnotationReference:     a.Reference.String(),
			AnnotationPackageID:     a.PackageID,
			AnnotationRevision:      a.Revision,
		},
	}

	manifestDesc, err := oras.PackManifest(ctx, fs, oras.PackManifestVersion1_1, ArtifactType, packOpts)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to pack manifest", err)
	}

	if tagErr := fs.Tag(ctx, manifestDesc, tag); tagErr != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to tag manifest in local store", tagErr)
	}

	desc, err := oras.Copy(ctx, fs, tag, dst, tag, oras.DefaultCopyOptions)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to push artifact to registry", err)
	}

	if !a.HeaderOnly {
		if tagErr := dst.Tag(ctx, desc, TagForPackage(a.Reference, a.PackageID)); tagErr != nil {
			return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to tag artifact by package id", tagErr)
		}
	}
	return desc, nil
}

// Pull downloads the artifact for ref into destDir, which must be empty or
// missing.
func Pull(ctx context.Context, r *Remote, ref recipe.Reference, destDir string) (*PullResult, error) {
	repo, err := r.repository(ref)
	if err != nil {
		return nil, err
	}

	slog.Debug("pulling package", "ref", ref.String(), "image", r.ImageReference(ref))

	desc, err := pullArtifact(ctx, repo, TagFor(ref), destDir)
	if err != nil {
		return nil, err
	}
	return &PullResult{Digest: desc.Digest.String(), Dir: destDir}, nil
}

func pullArtifact(ctx context.Context, src oras.ReadOnlyTarget, tag, destDir string) (ociv1.Descriptor, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create pull directory", err)
	}

	fs, err := file.New(destDir)
	if err != nil {
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeInternal, "failed to create file store", err)
	}
	defer func() { _ = fs.Close() }()

	desc, err := oras.Copy(ctx, src, tag, fs, tag, oras.DefaultCopyOptions)
	if err != nil {
		if errors.Is(err, errdef.ErrNotFound) {
			return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeNotFound, "package not found on remote", err)
		}
		return ociv1.Descriptor{}, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to pull artifact", err)
	}

	for _, name := range []string{PackageLayerName, ManifestLayerName, ChecksumsLayerName} {
		if _, statErr := os.Stat(filepath.Join(destDir, name)); statErr != nil {
			return ociv1.Descriptor{}, apperrors.WrapWithContext(apperrors.ErrCodeInvalidRequest,
				"artifact is not a hopkg package", statErr, map[string]any{"missing": name})
		}
	}
	return desc, nil
}

// Exists reports whether the remote holds an artifact for ref.
func Exists(ctx context.Context, r *Remote, ref recipe.Reference) (bool, error) {
	repo, err := r.repository(ref)
	if err != nil {
		return false, err
	}
	return exists(ctx, repo, TagFor(ref))
}

func exists(ctx context.Context, res content.Resolver, tag string) (bool, error) {
	_, err := res.Resolve(ctx, tag)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errdef.ErrNotFound) {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.ErrCodeUnavailable, "failed to resolve artifact", err)
}
