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

// Package cli implements the hopkg command-line interface.
//
// # Overview
//
// hopkg packages header-only C++ libraries. A recipe (hopkg.yaml) describes the
// library; the CLI exports it into a local cache, packages its headers under a
// settings-independent package id, and proves the result is consumable by
// building and running a small test package against it.
//
// # Commands
//
// create - Run the whole recipe pipeline:
//
//	hopkg create [--version V] [--force] [--keep-build] [--skip-test] <recipe-dir>
//
// export - Copy the recipe and its sources into the cache:
//
//	hopkg export [--version V] <recipe-dir>
//
// test - Build and run a test package against a cached package:
//
//	hopkg test <test-dir> <name/version[@user/channel]>
//
// info - Show a cached package manifest and its consumer graph:
//
//	hopkg info kitten/7.0.0
//
// install - Fetch a package and its consumer requirements from remotes:
//
//	hopkg install kitten/7.0.0
//
// upload - Push a cached package to an OCI registry:
//
//	hopkg upload --remote local kitten/7.0.0
//
// list and remove manage the local cache.
//
// # Global Flags
//
//	--config         Config file (default: $HOME/.hopkg/config.yaml)
//	--cache          Cache folder (env HOPKG_CACHE)
//	--setting, -s    Profile override, e.g. -s build_type=Debug
//	--log-level      debug, info, warn, error (env LOG_LEVEL)
//	--metrics-file   Prometheus textfile written on exit
//
// Commands that print results accept --output/-o and --format/-t (yaml, json,
// table).
//
// # Exit Codes
//
//	0  Success
//	1  Any failure: invalid recipe, unresolved requirement, export, build or
//	   test failure
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/rvarago/hopkg/pkg/cli.version=1.0.0'"
package cli
