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

// Package testpkg verifies that a packaged library is consumable.
//
// A test package is a small consumer project next to the recipe. The runner
// creates a fresh run folder, writes find modules for the package under test
// and everything it hands to consumers, builds the consumer with cmake or an
// explicit command, then runs the resulting executable:
//
//	cfg := testpkg.NewConfig(testpkg.WithSettings(settings))
//	res, err := testpkg.NewRunner(c, resolver.New(c), cfg).Run(ctx, "test_package", ref)
//
// Build and test are strictly ordered and never retried. A build failure
// means the package is not consumable and the executable is not run. The run
// folder is removed afterwards unless WithKeepBuild is set, so repeated runs
// give the same verdict.
package testpkg
