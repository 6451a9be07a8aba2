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

package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ResolveTimeout", ResolveTimeout, 30 * time.Second, 10 * time.Minute},
		{"RemoteLookupTimeout", RemoteLookupTimeout, 5 * time.Second, time.Minute},
		{"RemotePullTimeout", RemotePullTimeout, time.Minute, 30 * time.Minute},
		{"ConfigureTimeout", ConfigureTimeout, 30 * time.Second, 30 * time.Minute},
		{"BuildTimeout", BuildTimeout, time.Minute, time.Hour},
		{"RunTimeout", RunTimeout, 10 * time.Second, 30 * time.Minute},
		{"UploadTimeout", UploadTimeout, time.Minute, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) exceeds maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestTimeoutRelationships(t *testing.T) {
	if RemoteLookupTimeout >= ResolveTimeout {
		t.Errorf("RemoteLookupTimeout (%v) should be less than ResolveTimeout (%v)",
			RemoteLookupTimeout, ResolveTimeout)
	}
	if ConfigureTimeout > BuildTimeout {
		t.Errorf("ConfigureTimeout (%v) should not exceed BuildTimeout (%v)",
			ConfigureTimeout, BuildTimeout)
	}
}

func TestLimits(t *testing.T) {
	if ResolveConcurrency < 1 {
		t.Errorf("ResolveConcurrency must be positive, got %d", ResolveConcurrency)
	}
	if RemoteLookupsPerSecond < 1 {
		t.Errorf("RemoteLookupsPerSecond must be positive, got %d", RemoteLookupsPerSecond)
	}
	if OutputTailBytes < 256 {
		t.Errorf("OutputTailBytes too small: %d", OutputTailBytes)
	}
}
