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

// Package resolver binds declared requirements to concrete packages.
//
// Each requirement is looked up in the local cache first. When the cache has
// no package serving the current settings, the configured remotes are asked
// in order; the first remote holding a verified, matching package wins and
// the package is installed into the cache.
//
// Independent requirements resolve concurrently with a bounded errgroup, and
// remote lookups share a rate limiter so parallel resolution does not flood
// a registry. Any requirement that cannot be resolved fails resolution as a
// whole with a RESOLUTION_FAILED error, before anything is exported or
// copied.
//
// ConsumerGraph reports what a downstream consumer of a package receives:
// the package and its transitive requirements, never build-only ones.
package resolver
