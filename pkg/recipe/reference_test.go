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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	tests := []struct {
		in      string
		want    Reference
		wantErr bool
	}{
		{in: "catch2/2.11.0", want: Reference{Name: "catch2", Version: "2.11.0"}},
		{in: "kitten/7.0.0@rvarago/stable", want: Reference{Name: "kitten", Version: "7.0.0", User: "rvarago", Channel: "stable"}},
		{in: " fmt/10.0.0 ", want: Reference{Name: "fmt", Version: "10.0.0"}},
		{in: "", wantErr: true},
		{in: "catch2", wantErr: true},
		{in: "catch2/", wantErr: true},
		{in: "Catch2/2.11.0", wantErr: true},
		{in: "c/1.0", wantErr: true},
		{in: "kitten/1.0@rvarago", wantErr: true},
		{in: "kitten/1.0@/stable", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReference(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, MustParseReference(got.String()))
		})
	}
}

func TestReference_Less(t *testing.T) {
	assert.True(t, MustParseReference("a_a/1.0").Less(MustParseReference("bb/0.1")))
	assert.True(t, MustParseReference("kitten/2.0").Less(MustParseReference("kitten/10.0")))
	assert.False(t, MustParseReference("kitten/10.0").Less(MustParseReference("kitten/2.0")))
	assert.True(t, MustParseReference("kitten/1.0").Less(MustParseReference("kitten/1.0@u/c")))
}

func TestSettings(t *testing.T) {
	s := DefaultSettings()
	assert.NotEmpty(t, s.OS)
	assert.NotEmpty(t, s.Arch)
	assert.Equal(t, "Release", s.BuildType)

	require.NoError(t, s.Apply([]string{"compiler=clang", "compiler.version = 17", "build_type=Debug"}))
	assert.Equal(t, "clang", s.Compiler)
	assert.Equal(t, "17", s.CompilerVersion)
	assert.Equal(t, "Debug", s.BuildType)
	assert.Contains(t, s.Lines(), "compiler.version=17")

	require.Error(t, s.Apply([]string{"compiler"}))
	require.Error(t, s.Apply([]string{"cppstd=17"}))
}

func TestCompilePattern(t *testing.T) {
	tests := []struct {
		glob  string
		path  string
		match bool
	}{
		{"include/*", "include/kitten/kitten.h", true},
		{"include/*", "src/kitten.cpp", false},
		{"*.h", "include/kitten/kitten.h", true},
		{"*.h", "include/kitten/kitten.hpp", false},
		{"*.h", "kitten.h", true},
		{"include/?.h", "include/a.h", true},
		{"include/[ab].h", "include/b.h", true},
		{"include/[!ab].h", "include/b.h", false},
		{"include/[!ab].h", "include/c.h", true},
		{"include/[^a].h", "include/b.h", false},
		{"include/[^a].h", "include/^.h", true},
		{"a.b", "aXb", false},
	}

	for _, tt := range tests {
		t.Run(tt.glob+"~"+tt.path, func(t *testing.T) {
			p, err := CompilePattern(tt.glob)
			require.NoError(t, err)
			assert.Equal(t, tt.match, p.Match(tt.path))
		})
	}

	for _, bad := range []string{"", "/abs/*", "../*", "include/[ab"} {
		_, err := CompilePattern(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsHeaderPattern(t *testing.T) {
	for glob, want := range map[string]bool{
		"*.h":           true,
		"include/*.hpp": true,
		"*.H":           true,
		"*":             false,
		"*.h*":          false,
		"*.a":           false,
		"include/*":     false,
	} {
		assert.Equal(t, want, IsHeaderPattern(glob), glob)
	}
}

func TestMatchFiles(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"include/foo.h", "include/detail/bar.h", "src/foo.cpp", "README.md"} {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o600))
	}

	got, err := MatchFiles(root, []string{"include/*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"include/detail/bar.h", "include/foo.h"}, got)

	got, err = MatchFiles(root, []string{"*.h", "README.md"})
	require.NoError(t, err)
	assert.Equal(t, []string{"README.md", "include/detail/bar.h", "include/foo.h"}, got)

	got, err = MatchFiles(root, []string{"lib/*"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
