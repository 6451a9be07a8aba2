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
	"runtime"
	"sort"
	"strings"
)

// Setting keys accepted by Settings.Set.
const (
	SettingOS              = "os"
	SettingArch            = "arch"
	SettingCompiler        = "compiler"
	SettingCompilerVersion = "compiler.version"
	SettingBuildType       = "build_type"
)

// Settings is the build profile of one run.
type Settings struct {
	OS              string `json:"os,omitempty" yaml:"os,omitempty"`
	Arch            string `json:"arch,omitempty" yaml:"arch,omitempty"`
	Compiler        string `json:"compiler,omitempty" yaml:"compiler,omitempty"`
	CompilerVersion string `json:"compilerVersion,omitempty" yaml:"compilerVersion,omitempty"`
	BuildType       string `json:"buildType,omitempty" yaml:"buildType,omitempty"`
}

// DefaultSettings describes the host with a Release build.
func DefaultSettings() Settings {
	s := Settings{
		OS:        hostOS(runtime.GOOS),
		Arch:      hostArch(runtime.GOARCH),
		BuildType: "Release",
	}
	switch runtime.GOOS {
	case "windows":
		s.Compiler = "msvc"
	case "darwin":
		s.Compiler = "apple-clang"
	default:
		s.Compiler = "gcc"
	}
	return s
}

func hostOS(goos string) string {
	switch goos {
	case "darwin":
		return "Macos"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}

func hostArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "386":
		return "x86"
	case "arm64":
		return "armv8"
	default:
		return goarch
	}
}

// Set assigns one setting by key.
func (s *Settings) Set(key, value string) error {
	switch key {
	case SettingOS:
		s.OS = value
	case SettingArch:
		s.Arch = value
	case SettingCompiler:
		s.Compiler = value
	case SettingCompilerVersion:
		s.CompilerVersion = value
	case SettingBuildType:
		s.BuildType = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// Apply parses "key=value" overrides in order.
func (s *Settings) Apply(overrides []string) error {
	for _, o := range overrides {
		k, v, ok := strings.Cut(o, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("setting %q must have the form key=value", o)
		}
		if err := s.Set(strings.TrimSpace(k), strings.TrimSpace(v)); err != nil {
			return err
		}
	}
	return nil
}

// Map returns the non-empty settings keyed by setting name.
func (s Settings) Map() map[string]string {
	m := make(map[string]string, 5)
	add := func(k, v string) {
		if v != "" {
			m[k] = v
		}
	}
	add(SettingOS, s.OS)
	add(SettingArch, s.Arch)
	add(SettingCompiler, s.Compiler)
	add(SettingCompilerVersion, s.CompilerVersion)
	add(SettingBuildType, s.BuildType)
	return m
}

// Lines renders the settings as sorted "key=value" lines.
func (s Settings) Lines() []string {
	m := s.Map()
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
