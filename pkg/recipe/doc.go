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

// Package recipe models hopkg package and test-package recipes.
//
// A package recipe (hopkg.yaml) declares a header-only library: its identity,
// descriptive metadata, which sources to export, which files to package and
// which other packages it requires. Each requirement carries an explicit scope:
//
//	requires:
//	  - ref: catch2/2.11.0
//	    scope: build_only
//
// Build-only requirements are needed to build or test the package itself and
// never reach its consumers. Transitive requirements are consumed downstream.
//
// A test-package recipe (test_package/hopkg.yaml) describes a tiny consumer
// executable that proves the package is usable.
//
// Documents are checked against embedded JSON schemas before being decoded
// strictly, then validated for rules a schema cannot express, such as the
// header-only package patterns.
package recipe
