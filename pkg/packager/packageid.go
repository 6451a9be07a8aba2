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
	"crypto/sha1" //nolint:gosec // package ids are identifiers, not security boundaries
	"encoding/hex"
	"sort"
	"strings"

	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/resolver"
)

// InfoDocument renders the canonical description a package id is derived
// from. Only transitive requirements count: build-only requirements never
// change what consumers receive. Header-only packages clear every section,
// so their id does not depend on settings or requirements.
func InfoDocument(desc *recipe.Descriptor, settings recipe.Settings, resolved []resolver.Resolved) string {
	var settingLines, requireLines []string
	if !desc.HeaderOnly {
		settingLines = settings.Lines()
		for _, r := range resolved {
			if r.Requirement.Scope != recipe.ScopeTransitive {
				continue
			}
			requireLines = append(requireLines, r.Reference.String()+":"+r.PackageID)
		}
		sort.Strings(requireLines)
	}

	var b strings.Builder
	writeSection(&b, "settings", settingLines)
	writeSection(&b, "options", nil)
	writeSection(&b, "requires", requireLines)
	return b.String()
}

func writeSection(b *strings.Builder, name string, lines []string) {
	b.WriteString("[" + name + "]\n")
	for _, l := range lines {
		b.WriteString("    " + l + "\n")
	}
}

// ComputePackageID returns the SHA-1 hex digest of the info document.
func ComputePackageID(desc *recipe.Descriptor, settings recipe.Settings, resolved []resolver.Resolved) string {
	sum := sha1.Sum([]byte(InfoDocument(desc, settings, resolved))) //nolint:gosec
	return hex.EncodeToString(sum[:])
}
