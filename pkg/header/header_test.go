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

package header

import (
	"testing"
	"time"
)

func TestKind_IsValid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want bool
	}{
		{"package recipe", KindPackageRecipe, true},
		{"test recipe", KindTestRecipe, true},
		{"manifest", KindPackageManifest, true},
		{"test result", KindTestResult, true},
		{"create result", KindCreateResult, true},
		{"empty", Kind(""), false},
		{"unknown", Kind("Snapshot"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	h := New(
		WithKind(KindPackageManifest),
		WithAPIVersion(APIVersion),
		WithMetadata("package_id", "abc"),
	)

	if h.GetKind() != KindPackageManifest {
		t.Errorf("Kind = %s, want %s", h.Kind, KindPackageManifest)
	}
	if h.APIVersion != APIVersion {
		t.Errorf("APIVersion = %s, want %s", h.APIVersion, APIVersion)
	}
	if h.Metadata["package_id"] != "abc" {
		t.Errorf("metadata package_id = %q", h.Metadata["package_id"])
	}
}

func TestHeader_Init(t *testing.T) {
	var h Header
	h.Init(KindTestResult, APIVersion, "v1.2.3")

	if h.Kind != KindTestResult {
		t.Errorf("Kind = %s", h.Kind)
	}
	if h.Metadata["version"] != "v1.2.3" {
		t.Errorf("version = %q", h.Metadata["version"])
	}
	if _, err := time.Parse(time.RFC3339, h.Metadata["timestamp"]); err != nil {
		t.Errorf("timestamp not RFC3339: %v", err)
	}

	var noVersion Header
	noVersion.Init(KindTestResult, APIVersion, "")
	if _, ok := noVersion.Metadata["version"]; ok {
		t.Error("empty version should not be recorded")
	}
}
