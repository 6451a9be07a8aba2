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

package checksum

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
)

// FileName is the standard name for checksum files.
const FileName = "checksums.txt"

// Generate writes a checksum file at outPath listing the SHA256 of every
// file, relative to baseDir and sorted, one "<hex>  <path>" line each.
// The list lives outside baseDir so the package content stays untouched.
func Generate(ctx context.Context, baseDir string, files []string, outPath string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	lines, err := compute(ctx, baseDir, files)
	if err != nil {
		return err
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(outPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}

	slog.Debug("checksums generated",
		"file_count", len(lines),
		"path", outPath,
	)

	return nil
}

func compute(ctx context.Context, baseDir string, files []string) ([]string, error) {
	lines := make([]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled: %w", err)
		}

		sum, err := fileSHA256(file)
		if err != nil {
			return nil, err
		}

		relPath, err := filepath.Rel(baseDir, file)
		if err != nil || strings.HasPrefix(relPath, "..") {
			return nil, fmt.Errorf("%s is outside %s", file, baseDir)
		}
		lines = append(lines, fmt.Sprintf("%s  %s", sum, filepath.ToSlash(relPath)))
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i][66:] < lines[j][66:]
	})
	return lines, nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for checksum: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks every entry of the checksum file at listPath against the
// files under baseDir, and that baseDir holds no unlisted files.
func Verify(ctx context.Context, baseDir, listPath string) error {
	data, err := os.ReadFile(listPath)
	if err != nil {
		return fmt.Errorf("failed to read checksums: %w", err)
	}

	listed := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled: %w", err)
		}
		line := sc.Text()
		if line == "" {
			continue
		}
		want, rel, ok := strings.Cut(line, "  ")
		if !ok {
			return fmt.Errorf("malformed checksum line %q", line)
		}
		got, err := fileSHA256(filepath.Join(baseDir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}
		if got != want {
			return fmt.Errorf("checksum mismatch for %s", rel)
		}
		listed[rel] = true
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to parse checksums: %w", err)
	}

	return filepath.WalkDir(baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}
		if !listed[filepath.ToSlash(rel)] {
			return fmt.Errorf("unlisted file %s", filepath.ToSlash(rel))
		}
		return nil
	})
}

// Digest returns the OCI digest of a checksum file; it identifies the exact
// package content and serves as the package revision.
func Digest(listPath string) (digest.Digest, error) {
	f, err := os.Open(listPath)
	if err != nil {
		return "", fmt.Errorf("failed to open checksums: %w", err)
	}
	defer f.Close()

	d, err := digest.SHA256.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to digest checksums: %w", err)
	}
	return d, nil
}
