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
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	ociv1 "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/content/oci"

	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/recipe"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func testArtifact(t *testing.T) Artifact {
	t.Helper()
	root := t.TempDir()
	pkgDir := filepath.Join(root, "package", "abc")
	metaDir := filepath.Join(root, "metadata", "abc")

	writeTestFile(t, filepath.Join(pkgDir, "include", "kitten", "kitten.h"), "#pragma once\n")
	writeTestFile(t, filepath.Join(pkgDir, "LICENSE"), "MIT\n")
	writeTestFile(t, filepath.Join(metaDir, ManifestLayerName), "kind: PackageManifest\n")
	writeTestFile(t, filepath.Join(metaDir, ChecksumsLayerName), "abc  include/kitten/kitten.h\n")

	return Artifact{
		PackageDir:  pkgDir,
		MetadataDir: metaDir,
		Reference:   recipe.MustParseReference("kitten/7.0.0"),
		PackageID:   "abc",
		Revision:    "sha256:def",
		Created:     time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestPushArtifact_Structure(t *testing.T) {
	ctx := context.Background()
	a := testArtifact(t)

	layoutDir := t.TempDir()
	store, err := oci.New(layoutDir)
	if err != nil {
		t.Fatalf("failed to create OCI layout store: %v", err)
	}

	desc, err := pushArtifact(ctx, a, store, TagFor(a.Reference))
	if err != nil {
		t.Fatalf("pushArtifact() error = %v", err)
	}

	manifestPath := filepath.Join(layoutDir, "blobs", "sha256", strings.TrimPrefix(desc.Digest.String(), "sha256:"))
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}

	var manifest ociv1.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("failed to parse manifest: %v", err)
	}

	if manifest.ArtifactType != ArtifactType {
		t.Errorf("ArtifactType = %q, want %q", manifest.ArtifactType, ArtifactType)
	}
	if len(manifest.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(manifest.Layers))
	}

	titles := map[string]string{}
	for _, l := range manifest.Layers {
		titles[l.Annotations[ociv1.AnnotationTitle]] = l.MediaType
	}
	if titles[PackageLayerName] != ociv1.MediaTypeImageLayerGzip {
		t.Errorf("package layer media type = %q", titles[PackageLayerName])
	}
	if titles[ManifestLayerName] != MediaTypeManifest {
		t.Errorf("manifest layer media type = %q", titles[ManifestLayerName])
	}
	if _, ok := titles[ChecksumsLayerName]; !ok {
		t.Error("missing checksums layer")
	}

	ann := manifest.Annotations
	if ann[AnnotationReference] != "kitten/7.0.0" || ann[AnnotationPackageID] != "abc" || ann[AnnotationRevision] != "sha256:def" {
		t.Errorf("unexpected annotations: %v", ann)
	}
	if ann[ociv1.AnnotationCreated] != "2025-01-15T10:30:00Z" {
		t.Errorf("created = %q", ann[ociv1.AnnotationCreated])
	}
}

func TestPushArtifact_Reproducible(t *testing.T) {
	ctx := context.Background()
	a := testArtifact(t)

	var digests []string
	for i := 0; i < 2; i++ {
		store, err := oci.New(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create OCI layout store: %v", err)
		}
		desc, err := pushArtifact(ctx, a, store, "7.0.0")
		if err != nil {
			t.Fatalf("pushArtifact() error = %v", err)
		}
		digests = append(digests, desc.Digest.String())
	}
	if digests[0] != digests[1] {
		t.Errorf("pushes of the same package differ: %v", digests)
	}
}

func TestPushArtifact_PackageIDTag(t *testing.T) {
	ctx := context.Background()

	for _, headerOnly := range []bool{false, true} {
		a := testArtifact(t)
		a.HeaderOnly = headerOnly
		store, err := oci.New(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create OCI layout store: %v", err)
		}
		desc, err := pushArtifact(ctx, a, store, TagFor(a.Reference))
		if err != nil {
			t.Fatalf("pushArtifact() error = %v", err)
		}

		idTag := TagForPackage(a.Reference, a.PackageID)
		tagged, err := store.Resolve(ctx, idTag)
		if headerOnly {
			if err == nil {
				t.Errorf("header-only package should not be tagged %q", idTag)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Resolve(%q) error = %v", idTag, err)
		}
		if tagged.Digest != desc.Digest {
			t.Errorf("%s digest = %s, want %s", idTag, tagged.Digest, desc.Digest)
		}
	}
}

func TestPushArtifact_RequiresPackageID(t *testing.T) {
	a := testArtifact(t)
	a.PackageID = ""
	store, err := oci.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create OCI layout store: %v", err)
	}
	if _, err := pushArtifact(context.Background(), a, store, "7.0.0"); err == nil {
		t.Error("expected error without package id")
	}
}

func TestPullArtifact_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := testArtifact(t)

	store, err := oci.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create OCI layout store: %v", err)
	}
	pushed, err := pushArtifact(ctx, a, store, "7.0.0")
	if err != nil {
		t.Fatalf("pushArtifact() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "pull")
	pulled, err := pullArtifact(ctx, store, "7.0.0", dest)
	if err != nil {
		t.Fatalf("pullArtifact() error = %v", err)
	}
	if pulled.Digest != pushed.Digest {
		t.Errorf("digest = %s, want %s", pulled.Digest, pushed.Digest)
	}

	got, err := os.ReadFile(filepath.Join(dest, PackageLayerName, "include", "kitten", "kitten.h"))
	if err != nil {
		t.Fatalf("pulled header missing: %v", err)
	}
	if string(got) != "#pragma once\n" {
		t.Errorf("header content = %q", got)
	}
	for _, name := range []string{ManifestLayerName, ChecksumsLayerName, filepath.Join(PackageLayerName, "LICENSE")} {
		if _, err := os.Stat(filepath.Join(dest, name)); err != nil {
			t.Errorf("%s missing after pull: %v", name, err)
		}
	}
}

func TestPullArtifact_NotFound(t *testing.T) {
	store, err := oci.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create OCI layout store: %v", err)
	}
	_, err = pullArtifact(context.Background(), store, "9.9.9", t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing tag")
	}
	if code := errors.CodeOf(err); code != errors.ErrCodeNotFound {
		t.Errorf("code = %s, want %s", code, errors.ErrCodeNotFound)
	}
}

func TestExists(t *testing.T) {
	ctx := context.Background()
	a := testArtifact(t)

	store, err := oci.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create OCI layout store: %v", err)
	}

	ok, err := exists(ctx, store, "7.0.0")
	if err != nil || ok {
		t.Fatalf("exists() before push = %v, %v", ok, err)
	}

	if _, err := pushArtifact(ctx, a, store, "7.0.0"); err != nil {
		t.Fatalf("pushArtifact() error = %v", err)
	}

	ok, err = exists(ctx, store, "7.0.0")
	if err != nil || !ok {
		t.Errorf("exists() after push = %v, %v", ok, err)
	}
}
