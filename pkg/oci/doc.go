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

// Package oci stores hopkg packages in OCI-compliant registries.
//
// A remote is a registry prefix such as oci://ghcr.io/rvarago/hopkg. Each
// package name gets its own repository below the prefix and each reference
// its own tag:
//
//	kitten/7.0.0                 -> ghcr.io/rvarago/hopkg/kitten:7.0.0
//	kitten/7.0.0@rvarago/stable  -> ghcr.io/rvarago/hopkg/kitten:7.0.0_rvarago_stable
//
// Artifacts are pushed with ORAS (OCI Registry As Storage) as OCI 1.1
// manifests of type "application/vnd.hopkg.package.v1" with three layers:
//   - package: the package folder as a gzipped tar
//   - manifest.yaml: the package manifest
//   - checksums.txt: the content checksums
//
// The reference, package id and revision are also recorded as manifest
// annotations.
//
// # Authentication
//
// Credentials are loaded from the standard Docker configuration
// (~/.docker/config.json) using the ORAS credentials package.
package oci
