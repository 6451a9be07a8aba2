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
	"time"

	"github.com/rvarago/hopkg/pkg/header"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// Manifest describes one packaged artifact. It lives in the metadata folder
// next to the package content and is never modified once written.
type Manifest struct {
	header.Header `json:",inline" yaml:",inline"`

	Reference   recipe.Reference `json:"reference" yaml:"reference"`
	PackageID   string           `json:"packageId" yaml:"packageId"`
	Revision    string           `json:"revision" yaml:"revision"`
	HeaderOnly  bool             `json:"headerOnly" yaml:"headerOnly"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	License     string           `json:"license,omitempty" yaml:"license,omitempty"`
	URL         string           `json:"url,omitempty" yaml:"url,omitempty"`
	Settings    recipe.Settings  `json:"settings" yaml:"settings"`

	// Requires are the transitive requirements handed to consumers.
	Requires []recipe.Requirement `json:"requires,omitempty" yaml:"requires,omitempty"`

	// BuildRequires were needed to build or test the package only.
	BuildRequires []recipe.Requirement `json:"buildRequires,omitempty" yaml:"buildRequires,omitempty"`

	// Files are the slash-separated package-relative paths.
	Files   []string  `json:"files" yaml:"files"`
	Created time.Time `json:"created" yaml:"created"`
}

// MatchesSettings reports whether the package serves a consumer built with s.
// Header-only packages serve every settings combination.
func (m *Manifest) MatchesSettings(s recipe.Settings) bool {
	return m.HeaderOnly || m.Settings == s
}
