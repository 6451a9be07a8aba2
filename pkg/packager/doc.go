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

// Package packager exports recipes and packages them into the local cache.
//
// Create runs the steps in order:
//
//  1. resolve every declared requirement (failure aborts before any copy)
//  2. export the recipe, its exports and the sources matched by exportsSources
//  3. package the files matched by the package patterns, byte for byte and
//     with relative paths preserved, then add the exports at the package root
//
// A package is keyed by a package id, the SHA-1 of an info document holding
// the settings, options and transitive requirements. Header-only recipes
// clear the document, so every compiler, architecture and build type maps to
// the same id and the same cache slot.
//
// Alongside the content the metadata folder receives checksums.txt and a
// manifest. The digest of checksums.txt is the package revision; packaging
// content identical to a cached package reuses it.
//
// Configuration is immutable and built with functional options:
//
//	cfg := packager.NewConfig(
//	    packager.WithSettings(settings),
//	    packager.WithReferenceVersion("7.0.0"),
//	)
//	p, err := packager.New(c, r, cfg)
//	res, err := p.Create(ctx, desc, "path/to/recipe")
package packager
