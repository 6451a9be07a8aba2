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

package defaults

import "time"

// Resolution timeouts.
const (
	// ResolveTimeout bounds resolution of all requirements of one recipe.
	ResolveTimeout = 2 * time.Minute

	// RemoteLookupTimeout bounds a single tag lookup against an OCI remote.
	RemoteLookupTimeout = 15 * time.Second

	// RemotePullTimeout bounds downloading one package artifact.
	RemotePullTimeout = 5 * time.Minute

	// RemoteLookupsPerSecond throttles registry lookups during parallel resolution.
	RemoteLookupsPerSecond = 10

	// ResolveConcurrency is the number of requirements resolved at once.
	ResolveConcurrency = 4
)

// Test-package timeouts.
const (
	// ConfigureTimeout bounds the build tool's configure step.
	ConfigureTimeout = 5 * time.Minute

	// BuildTimeout bounds compilation of the test-package consumer.
	BuildTimeout = 10 * time.Minute

	// RunTimeout bounds execution of the built test executable.
	RunTimeout = 2 * time.Minute
)

// Publishing timeouts.
const (
	// UploadTimeout bounds pushing one package artifact to a remote.
	UploadTimeout = 10 * time.Minute
)

// Output capture limits.
const (
	// OutputTailBytes is how much of a failing process's output is kept in results.
	OutputTailBytes = 4096
)
