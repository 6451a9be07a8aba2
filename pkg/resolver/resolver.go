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
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/oci"
	"github.com/rvarago/hopkg/pkg/packager/checksum"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/serializer"
)

// Source tells where a requirement was found.
type Source string

const (
	SourceCache  Source = "cache"
	SourceRemote Source = "remote"
)

// Resolved is a requirement bound to a concrete package in the cache.
type Resolved struct {
	Requirement recipe.Requirement `json:"requirement" yaml:"requirement"`
	Reference   recipe.Reference   `json:"reference" yaml:"reference"`
	PackageID   string             `json:"packageId" yaml:"packageId"`
	Source      Source             `json:"source" yaml:"source"`
	Remote      string             `json:"remote,omitempty" yaml:"remote,omitempty"`

	Manifest *cache.Manifest `json:"-" yaml:"-"`
}

// Resolver binds requirements to packages, looking in the local cache first
// and then in each remote in order.
type Resolver struct {
	cache       *cache.Cache
	remotes     []Fetcher
	limiter     *rate.Limiter
	concurrency int
}

// Option is a functional option for configuring a Resolver.
type Option func(*Resolver)

// WithRemotes sets the remotes consulted after the cache, in order.
func WithRemotes(remotes ...Fetcher) Option {
	return func(r *Resolver) {
		r.remotes = remotes
	}
}

// WithConcurrency bounds how many requirements resolve at once.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithRateLimit throttles remote lookups to perSecond with the given burst.
func WithRateLimit(perSecond rate.Limit, burst int) Option {
	return func(r *Resolver) {
		r.limiter = rate.NewLimiter(perSecond, burst)
	}
}

// New creates a Resolver over c.
func New(c *cache.Cache, opts ...Option) *Resolver {
	r := &Resolver{
		cache:       c,
		concurrency: defaults.ResolveConcurrency,
		limiter:     rate.NewLimiter(rate.Limit(defaults.RemoteLookupsPerSecond), defaults.ResolveConcurrency),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAll resolves every requirement, concurrently up to the configured
// limit. Results keep declaration order. Any failure fails the whole call
// with a RESOLUTION_FAILED error.
func (r *Resolver) ResolveAll(ctx context.Context, reqs []recipe.Requirement, settings recipe.Settings) ([]Resolved, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.ResolveTimeout)
	defer cancel()

	results := make([]Resolved, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := r.Resolve(gctx, req, settings)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.HasCode(err, errors.ErrCodeResolution) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeResolution, "dependency resolution failed", err)
	}
	return results, nil
}

// Resolve binds one requirement to a package.
func (r *Resolver) Resolve(ctx context.Context, req recipe.Requirement, settings recipe.Settings) (*Resolved, error) {
	ref, err := req.Reference()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResolution, fmt.Sprintf("invalid requirement %q", req.Ref), err)
	}

	m, source, remote, err := r.find(ctx, ref, settings)
	if err != nil {
		resolutionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	resolutionsTotal.WithLabelValues(string(source)).Inc()

	slog.Debug("requirement resolved",
		"ref", ref.String(),
		"scope", req.Scope,
		"package_id", m.PackageID,
		"source", source,
	)

	return &Resolved{
		Requirement: req,
		Reference:   ref,
		PackageID:   m.PackageID,
		Source:      source,
		Remote:      remote,
		Manifest:    m,
	}, nil
}

func (r *Resolver) find(ctx context.Context, ref recipe.Reference, settings recipe.Settings) (*cache.Manifest, Source, string, error) {
	if m, err := r.cache.FindPackage(ref, settings); err == nil {
		return m, SourceCache, "", nil
	} else if !errors.HasCode(err, errors.ErrCodeNotFound) {
		return nil, "", "", errors.Wrap(errors.ErrCodeResolution, fmt.Sprintf("failed to read cache for %s", ref), err)
	}

	for _, remote := range r.remotes {
		m, err := r.fetch(ctx, remote, ref, settings)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", "", errors.Wrap(errors.ErrCodeResolution, fmt.Sprintf("resolution of %s cancelled", ref), ctx.Err())
			}
			slog.Warn("remote lookup failed",
				"ref", ref.String(),
				"remote", remote.Name(),
				"error", err,
			)
			continue
		}
		if m != nil {
			return m, SourceRemote, remote.Name(), nil
		}
	}

	return nil, "", "", errors.NewWithContext(errors.ErrCodeResolution,
		fmt.Sprintf("package %s not found in cache or any remote", ref),
		map[string]any{"ref": ref.String(), "remotes": len(r.remotes)})
}

// fetch returns nil without error when the remote does not hold a usable package.
func (r *Resolver) fetch(ctx context.Context, remote Fetcher, ref recipe.Reference, settings recipe.Settings) (*cache.Manifest, error) {
	start := time.Now()
	defer func() {
		remoteLookupDuration.WithLabelValues(remote.Name()).Observe(time.Since(start).Seconds())
	}()

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, defaults.RemoteLookupTimeout)
	found, err := remote.Exists(lookupCtx, ref)
	cancel()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	tmp, err := os.MkdirTemp(r.cache.Root(), ".pull-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create pull folder", err)
	}
	defer os.RemoveAll(tmp)

	pullCtx, cancel := context.WithTimeout(ctx, defaults.RemotePullTimeout)
	defer cancel()
	if err := remote.Pull(pullCtx, ref, tmp); err != nil {
		return nil, err
	}

	m, err := r.install(pullCtx, ref, tmp)
	if err != nil {
		return nil, err
	}
	if !m.MatchesSettings(settings) {
		slog.Warn("remote package does not match settings",
			"ref", ref.String(),
			"remote", remote.Name(),
			"package_id", m.PackageID,
		)
		return nil, nil
	}
	return m, nil
}

// install verifies a pulled artifact and moves it into the cache.
func (r *Resolver) install(ctx context.Context, ref recipe.Reference, dir string) (*cache.Manifest, error) {
	m, err := serializer.FromFile[cache.Manifest](filepath.Join(dir, oci.ManifestLayerName))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "pulled manifest is unreadable", err)
	}
	if m.Reference != ref {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "pulled package has a different reference",
			map[string]any{"want": ref.String(), "got": m.Reference.String()})
	}
	if m.PackageID == "" {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "pulled manifest has no package id")
	}

	pkgSrc := filepath.Join(dir, oci.PackageLayerName)
	sums := filepath.Join(dir, oci.ChecksumsLayerName)
	if err := checksum.Verify(ctx, pkgSrc, sums); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "pulled package failed verification", err)
	}
	if rev, err := checksum.Digest(sums); err != nil || rev.String() != m.Revision {
		return nil, errors.NewWithContext(errors.ErrCodeInvalidRequest, "pulled package revision mismatch",
			map[string]any{"want": m.Revision})
	}

	if r.cache.HasPackage(ref, m.PackageID) {
		return r.cache.ReadManifest(ref, m.PackageID)
	}

	pkgDst := r.cache.PackageDir(ref, m.PackageID)
	metaDst := r.cache.MetadataDir(ref, m.PackageID)
	for _, d := range []string{filepath.Dir(pkgDst), metaDst} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to prepare cache", err)
		}
	}
	if err := os.RemoveAll(pkgDst); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to clear stale package", err)
	}
	if err := os.Rename(pkgSrc, pkgDst); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to install package", err)
	}
	if err := os.Rename(sums, r.cache.ChecksumsPath(ref, m.PackageID)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to install checksums", err)
	}
	if err := r.cache.WriteManifest(m); err != nil {
		return nil, err
	}

	slog.Info("package installed from remote", "ref", ref.String(), "package_id", m.PackageID)
	return m, nil
}
