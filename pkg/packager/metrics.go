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

package packager

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	packageDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hopkg_package_duration_seconds",
			Help:    "Time taken to resolve, export and package a recipe",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	packagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopkg_packages_total",
			Help: "Total number of packaging attempts",
		},
		[]string{"status"}, // created, reused or error
	)

	filesPackaged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hopkg_files_packaged_total",
			Help: "Total number of files copied into packages",
		},
	)
)
