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

// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Packaging and validation failures are classified by code so the CLI and
// CI tooling can tell them apart:
//
//	RESOLUTION_FAILED  a requirement could not be found at its version/origin
//	EXPORT_FAILED      an export or package pattern matched nothing
//	BUILD_FAILED       the test-package consumer did not configure or compile
//	EXECUTION_FAILED   the test-package executable exited non-zero
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeBuild,
//	    "test package is not consumable",
//	    runErr,
//	    map[string]any{
//	        "command": "cmake",
//	        "dir":     buildDir,
//	    },
//	)
package errors
