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
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Pattern is a compiled file-selection glob. Unlike path.Match, '*' and '?'
// also match '/', so "*.h" selects headers at any depth and "include/*"
// selects the whole include tree.
type Pattern struct {
	raw string
	g   glob.Glob
}

// CompilePattern compiles a glob into a Pattern.
func CompilePattern(pattern string) (*Pattern, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	if filepath.IsAbs(pattern) || strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must be relative", pattern)
	}
	for _, seg := range strings.Split(filepath.ToSlash(pattern), "/") {
		if seg == ".." {
			return nil, fmt.Errorf("pattern %q must not leave the source tree", pattern)
		}
	}

	// no separators: wildcards cross directory boundaries
	g, err := glob.Compile(filepath.ToSlash(pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return &Pattern{raw: pattern, g: g}, nil
}

// Match reports whether the slash-separated relative path matches.
func (p *Pattern) Match(rel string) bool {
	return p.g.Match(filepath.ToSlash(rel))
}

func (p *Pattern) String() string {
	return p.raw
}

// IsHeaderPattern reports whether every path the glob can match ends in a
// header extension. Only a literal header suffix qualifies.
func IsHeaderPattern(pattern string) bool {
	lower := strings.ToLower(pattern)
	for _, ext := range HeaderExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// MatchFiles walks root and returns the sorted, slash-separated relative
// paths of regular files matched by any of the globs.
func MatchFiles(root string, globs []string) ([]string, error) {
	patterns := make([]*Pattern, 0, len(globs))
	for _, g := range globs {
		p, err := CompilePattern(g)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}

	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, p := range patterns {
			if p.Match(rel) {
				matches = append(matches, rel)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	sort.Strings(matches)
	return matches, nil
}
