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

// Package generator writes build-system files that let a consumer find
// cached packages.
//
// The cmake_find_package generator emits one Find<name>.cmake module per
// package. A consumer adds the folder to CMAKE_MODULE_PATH and calls
// find_package(<name>), then links the imported target <name>::<name>.
package generator
