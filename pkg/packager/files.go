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
	"fmt"
	"os"
	"path/filepath"
	"sort"

	cp "github.com/otiai10/copy"
)

// copyFile copies src to dst byte for byte, keeping the permission bits and
// creating parent folders.
func copyFile(src, dst string) error {
	if err := cp.Copy(src, dst, cp.Options{Sync: true}); err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return nil
}

// copyFiles copies the slash-separated relative paths from srcRoot to dstRoot.
func copyFiles(srcRoot, dstRoot string, rels []string) error {
	for _, rel := range rels {
		native := filepath.FromSlash(rel)
		if err := copyFile(filepath.Join(srcRoot, native), filepath.Join(dstRoot, native)); err != nil {
			return err
		}
	}
	return nil
}

// listFiles returns the sorted slash-separated relative paths of all regular
// files under root.
func listFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
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
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(out)
	return out, err
}

// copyTree copies every regular file under src into dst. Symlinks are
// copied as their targets' content.
func copyTree(src, dst string) error {
	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Deep },
		Sync:      true,
	}
	if err := cp.Copy(src, dst, opts); err != nil {
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// resetDir empties dir, creating it if needed.
func resetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}
