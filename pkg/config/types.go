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
	"github.com/rvarago/hopkg/pkg/oci"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// Config is the user configuration loaded from ~/.hopkg/config.yaml.
type Config struct {
	// CacheDir is the local package cache.
	CacheDir string `yaml:"cache_dir"`

	// Concurrency bounds parallel dependency resolution.
	Concurrency int `yaml:"concurrency"`

	// Settings overrides the host-derived build profile.
	Settings map[string]string `yaml:"settings,omitempty"`

	// Remotes are searched in order when a package is not cached.
	Remotes []RemoteConfig `yaml:"remotes,omitempty"`
}

// RemoteConfig is one OCI remote.
type RemoteConfig struct {
	Name        string `yaml:"name"`
	URI         string `yaml:"uri"`                    // oci://registry/prefix
	PlainHTTP   bool   `yaml:"plain_http,omitempty"`   // local registries
	InsecureTLS bool   `yaml:"insecure_tls,omitempty"` // self-signed certificates
}

// Profile returns the host defaults with the configured settings applied.
func (c *Config) Profile() (recipe.Settings, error) {
	s := recipe.DefaultSettings()
	for _, k := range sortedKeys(c.Settings) {
		if err := s.Set(k, c.Settings[k]); err != nil {
			return s, err
		}
	}
	return s, nil
}

// Remote returns the configured remote with the given name.
func (c *Config) Remote(name string) (*oci.Remote, error) {
	for _, rc := range c.Remotes {
		if rc.Name == name {
			return rc.parse()
		}
	}
	return nil, errRemoteNotFound(name)
}

// OCIRemotes returns all configured remotes in search order.
func (c *Config) OCIRemotes() ([]*oci.Remote, error) {
	out := make([]*oci.Remote, 0, len(c.Remotes))
	for _, rc := range c.Remotes {
		r, err := rc.parse()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (rc RemoteConfig) parse() (*oci.Remote, error) {
	r, err := oci.ParseRemote(rc.Name, rc.URI)
	if err != nil {
		return nil, err
	}
	r.PlainHTTP = rc.PlainHTTP
	r.InsecureTLS = rc.InsecureTLS
	return r, nil
}
