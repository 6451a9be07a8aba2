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

package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hopkg_resolutions_total",
			Help: "Total number of requirement resolutions",
		},
		[]string{"source"}, // cache, remote or error
	)

	remoteLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hopkg_remote_lookup_duration_seconds",
			Help:    "Time taken to look up and fetch a package from a remote",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"remote"},
	)
)
