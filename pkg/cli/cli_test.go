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

package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/serializer"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		wantFormat serializer.Format
		wantErr    bool
	}{
		{"valid yaml format", "yaml", serializer.FormatYAML, false},
		{"valid json format", "json", serializer.FormatJSON, false},
		{"valid table format", "table", serializer.FormatTable, false},
		{"invalid format xml", "xml", "", true},
		{"empty format", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: tt.format},
				},
				Action: func(_ context.Context, c *cli.Command) error {
					got, err := parseOutputFormat(c)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					assert.NoError(t, err)
					assert.Equal(t, tt.wantFormat, got)
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), []string{"test"}))
		})
	}
}

func TestParseRefArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"plain", []string{"test", "kitten/7.0.0"}, "kitten/7.0.0", false},
		{"user channel", []string{"test", "kitten/7.0.0@rvarago/stable"}, "kitten/7.0.0@rvarago/stable", false},
		{"missing", []string{"test"}, "", true},
		{"invalid", []string{"test", "Kitten"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cli.Command{
				Action: func(_ context.Context, c *cli.Command) error {
					ref, err := parseRefArg(c, 0)
					if tt.wantErr {
						assert.Error(t, err)
						return nil
					}
					require.NoError(t, err)
					assert.Equal(t, tt.want, ref.String())
					return nil
				},
			}
			require.NoError(t, cmd.Run(context.Background(), tt.args))
		})
	}
}

func TestRootCommand_Structure(t *testing.T) {
	root := NewRootCommand()
	assert.Equal(t, name, root.Name)

	want := []string{"create", "export", "test", "info", "install", "upload", "list", "remove", "version"}
	got := make([]string, 0, len(root.Commands))
	for _, c := range root.Commands {
		assert.NotEmpty(t, c.Usage, c.Name)
		assert.NotNil(t, c.Action, c.Name)
		got = append(got, c.Name)
	}
	assert.Equal(t, want, got)
}

// workspace is a config file, a cache and a recipe folder for one test.
type workspace struct {
	config    string
	cache     string
	recipeDir string
}

func newWorkspace(t *testing.T, withHeaders bool) *workspace {
	t.Helper()
	root := t.TempDir()
	w := &workspace{
		config:    filepath.Join(root, "config.yaml"),
		cache:     filepath.Join(root, "cache"),
		recipeDir: filepath.Join(root, "foo"),
	}
	require.NoError(t, os.WriteFile(w.config, []byte("cache_dir: "+w.cache+"\n"), 0o600))

	files := map[string]string{
		"hopkg.yaml": `kind: PackageRecipe
apiVersion: hopkg.dev/v1alpha1
name: foo
license: MIT
homepage: https://example.com/foo
exports: [LICENSE]
exportsSources: ["include/*"]
noCopySource: true
headerOnly: true
`,
		"LICENSE": "MIT\n",
	}
	if withHeaders {
		files["include/foo/foo.h"] = "#pragma once\n"
	}
	for rel, content := range files {
		p := filepath.Join(w.recipeDir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return w
}

func (w *workspace) run(t *testing.T, args ...string) error {
	t.Helper()
	full := append([]string{name, "--config", w.config, "--log-level", "error"}, args...)
	return NewRootCommand().Run(context.Background(), full)
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestCreate_InfoListRemove(t *testing.T) {
	w := newWorkspace(t, true)
	out := filepath.Join(t.TempDir(), "create.json")
	metrics := filepath.Join(t.TempDir(), "metrics.prom")

	err := w.run(t, "--metrics-file", metrics,
		"create", "--version", "1.0.0", "--skip-test", "-o", out, "-t", "json", w.recipeDir)
	require.NoError(t, err)

	res := readJSON(t, out)
	assert.Equal(t, "CreateResult", res["kind"])
	pkg := res["package"].(map[string]any)
	assert.Equal(t, "created", pkg["status"])
	assert.Equal(t, []any{"LICENSE", "include/foo/foo.h"}, pkg["files"])
	assert.NotContains(t, res, "test")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "hopkg_packages_total")

	infoOut := filepath.Join(t.TempDir(), "info.json")
	require.NoError(t, w.run(t, "info", "-o", infoOut, "-t", "json", "foo/1.0.0"))
	info := readJSON(t, infoOut)
	assert.Equal(t, pkg["packageId"], info["manifest"].(map[string]any)["packageId"])

	listOut := filepath.Join(t.TempDir(), "list.json")
	require.NoError(t, w.run(t, "list", "-o", listOut, "-t", "json"))
	data, err := os.ReadFile(listOut)
	require.NoError(t, err)
	assert.JSONEq(t, `["foo/1.0.0"]`, string(data))

	require.NoError(t, w.run(t, "remove", "foo/1.0.0"))
	err = w.run(t, "info", "foo/1.0.0")
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestCreate_SecondRunReuses(t *testing.T) {
	w := newWorkspace(t, true)
	outDir := t.TempDir()

	for i, want := range []string{"created", "reused"} {
		out := filepath.Join(outDir, want+".json")
		require.NoError(t, w.run(t, "create", "--version", "1.0.0", "--skip-test", "-o", out, "-t", "json", w.recipeDir), i)
		assert.Equal(t, want, readJSON(t, out)["package"].(map[string]any)["status"])
	}
}

func TestCreate_Failures(t *testing.T) {
	t.Run("no headers", func(t *testing.T) {
		w := newWorkspace(t, false)
		err := w.run(t, "create", "--version", "1.0.0", "--skip-test", w.recipeDir)
		assert.Equal(t, errors.ErrCodeExport, errors.CodeOf(err))
	})

	t.Run("no version", func(t *testing.T) {
		w := newWorkspace(t, true)
		err := w.run(t, "create", "--skip-test", w.recipeDir)
		assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
	})

	t.Run("unknown format", func(t *testing.T) {
		w := newWorkspace(t, true)
		err := w.run(t, "create", "--version", "1.0.0", "-t", "xml", w.recipeDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})

	t.Run("bad setting", func(t *testing.T) {
		w := newWorkspace(t, true)
		err := w.run(t, "-s", "cpu=x86", "create", "--version", "1.0.0", w.recipeDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--setting")
	})
}

func TestTest_RequiresPackageStep(t *testing.T) {
	w := newWorkspace(t, true)
	err := w.run(t, "test", filepath.Join(w.recipeDir, "test_package"), "foo/1.0.0")
	require.Error(t, err)

	err = w.run(t, "test", "only-one-arg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected <test-dir> <reference>")
}

func TestUpload_NoRemotes(t *testing.T) {
	w := newWorkspace(t, true)
	require.NoError(t, w.run(t, "create", "--version", "1.0.0", "--skip-test", "-o", filepath.Join(t.TempDir(), "o.yaml"), w.recipeDir))

	err := w.run(t, "upload", "foo/1.0.0")
	assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))

	err = w.run(t, "upload", "--remote", "missing", "foo/1.0.0")
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestInstall_NotFound(t *testing.T) {
	w := newWorkspace(t, true)
	err := w.run(t, "install", "bar/1.0.0")
	assert.Equal(t, errors.ErrCodeResolution, errors.CodeOf(err))
}

func TestLoadConfig_ExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}
