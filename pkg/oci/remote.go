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

package oci

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/distribution/reference"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/credentials"

	apperrors "github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// URIScheme is the URI scheme of a remote (e.g., "oci://ghcr.io/rvarago/hopkg").
const URIScheme = "oci://"

const (
	maxTagLen       = 128
	packageTagIDLen = 12
)

var invalidTagChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Remote is an OCI registry prefix under which packages are stored, one
// repository per package name and one tag per reference.
type Remote struct {
	// Name identifies the remote in configuration and logs.
	Name string
	// Registry is the registry host (e.g., "ghcr.io", "localhost:5000").
	Registry string
	// Repository is the path prefix (e.g., "rvarago/hopkg").
	Repository string
	// PlainHTTP uses HTTP instead of HTTPS.
	PlainHTTP bool
	// InsecureTLS skips TLS certificate verification.
	InsecureTLS bool
}

// ParseRemote parses an "oci://registry/prefix" URI. Tags and digests are
// rejected since they are derived from package references.
func ParseRemote(name, uri string) (*Remote, error) {
	if !strings.HasPrefix(uri, URIScheme) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("remote %q must start with %s", uri, URIScheme))
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(uri, URIScheme), "/")
	if !strings.Contains(trimmed, "/") {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("remote %q needs a repository prefix after the registry", uri))
	}

	named, err := reference.ParseNormalizedNamed(trimmed)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI remote", err)
	}
	if _, ok := named.(reference.Tagged); ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("remote %q must not carry a tag", uri))
	}
	if _, ok := named.(reference.Digested); ok {
		return nil, apperrors.New(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("remote %q must not carry a digest", uri))
	}

	r := &Remote{
		Name:       name,
		Registry:   reference.Domain(named),
		Repository: reference.Path(named),
	}
	if err := ValidateRegistryReference(r.Registry, r.Repository); err != nil {
		return nil, err
	}
	return r, nil
}

// ValidateRegistryReference checks that registry and repository form a valid
// image name.
func ValidateRegistryReference(registry, repository string) error {
	host := stripProtocol(registry)
	if host == "" || repository == "" {
		return apperrors.New(apperrors.ErrCodeInvalidRequest, "registry and repository are required")
	}
	if _, err := reference.ParseNamed(host + "/" + repository); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("invalid registry reference %s/%s", host, repository), err)
	}
	return nil
}

// String returns the remote URI.
func (r *Remote) String() string {
	return fmt.Sprintf("%s%s/%s", URIScheme, r.Registry, r.Repository)
}

// RepositoryFor returns the repository holding every version of ref.
func (r *Remote) RepositoryFor(ref recipe.Reference) string {
	return fmt.Sprintf("%s/%s/%s", r.Registry, r.Repository, ref.Name)
}

// ImageReference returns the tagged image reference for ref.
func (r *Remote) ImageReference(ref recipe.Reference) string {
	return r.RepositoryFor(ref) + ":" + TagFor(ref)
}

// TagFor maps a package reference to its tag: the version, followed by
// user and channel when present. Characters tags cannot hold become '_'.
func TagFor(ref recipe.Reference) string {
	tag := ref.Version
	if ref.User != "" {
		tag += "_" + ref.User + "_" + ref.Channel
	}
	tag = invalidTagChars.ReplaceAllString(tag, "_")
	if len(tag) > maxTagLen {
		tag = tag[:maxTagLen]
	}
	return tag
}

// TagForPackage maps a package reference and id to the tag that pins one
// package variant: TagFor(ref) followed by the first 12 characters of id.
func TagForPackage(ref recipe.Reference, id string) string {
	if len(id) > packageTagIDLen {
		id = id[:packageTagIDLen]
	}
	suffix := "-" + invalidTagChars.ReplaceAllString(id, "_")
	tag := TagFor(ref)
	if len(tag)+len(suffix) > maxTagLen {
		tag = tag[:maxTagLen-len(suffix)]
	}
	return tag + suffix
}

func (r *Remote) repository(ref recipe.Reference) (*remote.Repository, error) {
	repo, err := remote.NewRepository(r.RepositoryFor(ref))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "failed to initialize remote repository", err)
	}
	repo.PlainHTTP = r.PlainHTTP
	repo.Client = createAuthClient(r.PlainHTTP, r.InsecureTLS)
	return repo, nil
}

// stripProtocol removes http:// or https:// prefix from a registry URL.
func stripProtocol(registry string) string {
	registry = strings.TrimPrefix(registry, "https://")
	registry = strings.TrimPrefix(registry, "http://")
	return registry
}

// createAuthClient creates an HTTP client with optional TLS configuration
// and Docker credential support.
func createAuthClient(plainHTTP, insecureTLS bool) *auth.Client {
	credStore, _ := credentials.NewStoreFromDocker(credentials.StoreOptions{})

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !plainHTTP && insecureTLS {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		} else {
			transport.TLSClientConfig.InsecureSkipVerify = true //nolint:gosec
		}
	}

	client := &auth.Client{
		Client: &http.Client{Transport: transport},
		Cache:  auth.NewCache(),
	}
	if credStore != nil {
		client.Credential = credentials.Credential(credStore)
	}
	return client
}
