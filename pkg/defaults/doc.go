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

// Package defaults centralizes timeouts and limits used across hopkg.
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.BuildTimeout)
//	defer cancel()
//
// # Timeout Guidelines
//
//   - Resolution: 15s per remote lookup, 2m for the whole recipe
//   - Test package: 5m configure, 10m build, 2m run
//   - Upload: 10m per artifact
package defaults
