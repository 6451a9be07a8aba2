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
	"regexp"
	"strings"

	"github.com/rvarago/hopkg/pkg/version"
)

var (
	namePattern    = regexp.MustCompile(`^[a-z0-9_][a-z0-9_+.-]{1,50}$`)
	versionPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]{0,50}$`)
	userPattern    = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.+-]{0,50}$`)
)

// Reference identifies a package: name/version[@user/channel].
type Reference struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	User    string `json:"user,omitempty" yaml:"user,omitempty"`
	Channel string `json:"channel,omitempty" yaml:"channel,omitempty"`
}

// ParseReference parses "name/version" or "name/version@user/channel".
func ParseReference(s string) (Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Reference{}, fmt.Errorf("reference is empty")
	}

	main, origin, hasOrigin := strings.Cut(s, "@")
	name, ver, ok := strings.Cut(main, "/")
	if !ok {
		return Reference{}, fmt.Errorf("reference %q must have the form name/version[@user/channel]", s)
	}

	ref := Reference{Name: name, Version: ver}
	if hasOrigin {
		user, channel, ok := strings.Cut(origin, "/")
		if !ok {
			return Reference{}, fmt.Errorf("reference %q: origin must have the form user/channel", s)
		}
		ref.User, ref.Channel = user, channel
	}

	if err := ref.Validate(); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// MustParseReference is ParseReference for literals in tests and defaults.
func MustParseReference(s string) Reference {
	ref, err := ParseReference(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// Validate checks each component of the reference.
func (r Reference) Validate() error {
	if !namePattern.MatchString(r.Name) {
		return fmt.Errorf("invalid package name %q: must match %s", r.Name, namePattern)
	}
	if !versionPattern.MatchString(r.Version) {
		return fmt.Errorf("invalid version %q for package %s", r.Version, r.Name)
	}
	if (r.User == "") != (r.Channel == "") {
		return fmt.Errorf("package %s: user and channel must be set together", r.Name)
	}
	if r.User != "" {
		if !userPattern.MatchString(r.User) {
			return fmt.Errorf("invalid user %q for package %s", r.User, r.Name)
		}
		if !userPattern.MatchString(r.Channel) {
			return fmt.Errorf("invalid channel %q for package %s", r.Channel, r.Name)
		}
	}
	return nil
}

// String renders the canonical reference form.
func (r Reference) String() string {
	if r.User == "" {
		return r.Name + "/" + r.Version
	}
	return r.Name + "/" + r.Version + "@" + r.User + "/" + r.Channel
}

// Less orders references by name, then version (numerically when both parse),
// then origin.
func (r Reference) Less(other Reference) bool {
	if r.Name != other.Name {
		return r.Name < other.Name
	}
	if r.Version != other.Version {
		a, errA := version.Parse(r.Version)
		b, errB := version.Parse(other.Version)
		if errA == nil && errB == nil {
			if c := a.Compare(b); c != 0 {
				return c < 0
			}
		}
		return r.Version < other.Version
	}
	return r.User+"/"+r.Channel < other.User+"/"+other.Channel
}
