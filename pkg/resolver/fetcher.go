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
	"context"

	"github.com/rvarago/hopkg/pkg/oci"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// Fetcher looks up and downloads packages from one remote.
type Fetcher interface {
	// Name identifies the remote in logs and results.
	Name() string
	// Exists reports whether the remote holds ref.
	Exists(ctx context.Context, ref recipe.Reference) (bool, error)
	// Pull downloads ref into dir as package/, manifest.yaml and checksums.txt.
	Pull(ctx context.Context, ref recipe.Reference, dir string) error
}

// NewOCIFetcher returns a Fetcher backed by an OCI remote.
func NewOCIFetcher(r *oci.Remote) Fetcher {
	return &ociFetcher{remote: r}
}

type ociFetcher struct {
	remote *oci.Remote
}

func (f *ociFetcher) Name() string {
	return f.remote.Name
}

func (f *ociFetcher) Exists(ctx context.Context, ref recipe.Reference) (bool, error) {
	return oci.Exists(ctx, f.remote, ref)
}

func (f *ociFetcher) Pull(ctx context.Context, ref recipe.Reference, dir string) error {
	_, err := oci.Pull(ctx, f.remote, ref, dir)
	return err
}
