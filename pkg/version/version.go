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

// Package version parses and orders package versions such as "2.11.0",
// "1.0" or "3.1.4-rc1".
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Error types for version parsing failures
var (
	ErrEmptyVersion      = errors.New("version string is empty")
	ErrTooManyComponents = errors.New("version has more than 3 components")
	ErrNonNumeric        = errors.New("version component is not numeric")
)

// Version is a package version with up to three numeric components.
// Precision records how many components were written; Extras keeps any
// pre-release or build suffix ("-rc1", "+git.abc") verbatim.
type Version struct {
	Major     int    `json:"major" yaml:"major"`
	Minor     int    `json:"minor,omitempty" yaml:"minor,omitempty"`
	Patch     int    `json:"patch,omitempty" yaml:"patch,omitempty"`
	Precision int    `json:"precision" yaml:"precision"`
	Extras    string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// String returns the version as written, including extras.
func (v Version) String() string {
	var s string
	switch v.Precision {
	case 1:
		s = strconv.Itoa(v.Major)
	case 2:
		s = fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		s = fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return s + v.Extras
}

// Parse parses "1", "1.2", "1.2.3", an optional "v" prefix, and an optional
// suffix introduced by '-' or '+'.
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, ErrEmptyVersion
	}
	s = strings.TrimPrefix(s, "v")

	var v Version
	mainPart := s
	if i := strings.IndexAny(s, "-+"); i > 0 {
		mainPart, v.Extras = s[:i], s[i:]
	}

	parts := strings.Split(mainPart, ".")
	if len(parts) > 3 {
		return Version{}, ErrTooManyComponents
	}
	for i, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrNonNumeric, part)
		}
		switch i {
		case 0:
			v.Major = num
		case 1:
			v.Minor = num
		case 2:
			v.Patch = num
		}
	}
	v.Precision = len(parts)
	return v, nil
}

// MustParse parses a version string and panics if parsing fails.
// Only use this for hardcoded strings or in tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("MustParse: %v", err))
	}
	return v
}

// Compare returns -1, 0 or 1. Missing components compare as zero, and a
// version with extras sorts before the same version without them
// ("1.0.0-rc1" < "1.0.0").
func (v Version) Compare(other Version) int {
	for _, pair := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if pair[0] < pair[1] {
			return -1
		}
		if pair[0] > pair[1] {
			return 1
		}
	}
	switch {
	case v.Extras == other.Extras:
		return 0
	case v.Extras == "":
		return 1
	case other.Extras == "":
		return -1
	default:
		return strings.Compare(v.Extras, other.Extras)
	}
}

// IsValid reports whether all components are non-negative and precision is 1..3.
func (v Version) IsValid() bool {
	if v.Major < 0 || v.Minor < 0 || v.Patch < 0 {
		return false
	}
	return v.Precision >= 1 && v.Precision <= 3
}
