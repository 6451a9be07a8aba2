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

// Package config loads the hopkg user configuration.
//
// The file lives at ~/.hopkg/config.yaml and is optional:
//
//	cache_dir: /home/me/.hopkg/data
//	concurrency: 4
//	settings:
//	  compiler: clang
//	  build_type: Debug
//	remotes:
//	  - name: local
//	    uri: oci://localhost:5000/hopkg
//	    plain_http: true
package config
