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

package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/recipe"
)

const (
	// HomeDirName is the hopkg folder under the user's home.
	HomeDirName = ".hopkg"

	// FileName is the config file inside the hopkg folder.
	FileName = "config.yaml"

	// DataDirName is the default cache folder inside the hopkg folder.
	DataDirName = "data"
)

// Home returns ~/.hopkg.
func Home() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home folder: %w", err)
	}
	return filepath.Join(home, HomeDirName), nil
}

// DefaultPath returns ~/.hopkg/config.yaml.
func DefaultPath() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// Default returns the configuration used when no file exists.
func Default() (*Config, error) {
	home, err := Home()
	if err != nil {
		return nil, err
	}
	return &Config{
		CacheDir:    filepath.Join(home, DataDirName),
		Concurrency: defaults.ResolveConcurrency,
	}, nil
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("config file %s not found", path), err)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to read config file %s", path), err)
	}
	return Parse(path, data)
}

// LoadOrDefault is Load that falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.HasCode(err, errors.ErrCodeNotFound) {
		return Default()
	}
	return cfg, err
}

// Parse decodes config data over the defaults and validates it. path is only
// used in messages.
func Parse(path string, data []byte) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to build default config", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, formatYAMLError(path, err), err)
	}

	if err := validate(cfg); err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest, "invalid config", err,
			map[string]any{"path": path})
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.CacheDir) == "" {
		return fmt.Errorf("cache_dir cannot be empty")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}

	var probe recipe.Settings
	for _, k := range sortedKeys(cfg.Settings) {
		if err := probe.Set(k, cfg.Settings[k]); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}

	seen := make(map[string]bool, len(cfg.Remotes))
	for i, rc := range cfg.Remotes {
		if rc.Name == "" {
			return fmt.Errorf("remote #%d is missing the 'name' field", i+1)
		}
		if seen[rc.Name] {
			return fmt.Errorf("remote %q is defined more than once", rc.Name)
		}
		seen[rc.Name] = true
		if _, err := rc.parse(); err != nil {
			return fmt.Errorf("remote %q: %w", rc.Name, err)
		}
	}
	return nil
}

func formatYAMLError(path string, err error) string {
	if strings.Contains(err.Error(), "line") {
		return fmt.Sprintf("syntax error in %s", path)
	}
	return fmt.Sprintf("failed to parse %s", path)
}

func errRemoteNotFound(name string) error {
	return errors.NewWithContext(errors.ErrCodeNotFound, fmt.Sprintf("remote %q is not configured", name),
		map[string]any{"remote": name})
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
