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

package testpkg

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/generator"
	"github.com/rvarago/hopkg/pkg/header"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/resolver"
)

// Status is the verdict of a test-package run.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
)

// Phase names a step of a test-package run.
type Phase string

const (
	PhaseBuild Phase = "build"
	PhaseTest  Phase = "test"
)

// Result is the verdict of a test-package run.
type Result struct {
	header.Header `json:",inline" yaml:",inline"`

	Reference     recipe.Reference `json:"reference" yaml:"reference"`
	PackageID     string           `json:"packageId" yaml:"packageId"`
	TestPackage   string           `json:"testPackage" yaml:"testPackage"`
	Status        Status           `json:"status" yaml:"status"`
	FailedPhase   Phase            `json:"failedPhase,omitempty" yaml:"failedPhase,omitempty"`
	ExitCode      int              `json:"exitCode" yaml:"exitCode"`
	BuildDuration time.Duration    `json:"buildDuration" yaml:"buildDuration"`
	TestDuration  time.Duration    `json:"testDuration,omitempty" yaml:"testDuration,omitempty"`
	RunDir        string           `json:"runDir,omitempty" yaml:"runDir,omitempty"`
	Output        string           `json:"output,omitempty" yaml:"output,omitempty"`
}

// GraphResolver provides the consumer view of a cached package.
type GraphResolver interface {
	ConsumerGraph(ctx context.Context, ref recipe.Reference, settings recipe.Settings) (*resolver.Graph, error)
}

// Runner builds a test package against a cached package and runs it.
type Runner struct {
	cache   *cache.Cache
	graph   GraphResolver
	builder Builder
	cfg     *Config
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBuilder replaces the builder chosen from the test recipe.
func WithBuilder(b Builder) RunnerOption {
	return func(r *Runner) {
		r.builder = b
	}
}

// NewRunner returns a Runner over the cache.
func NewRunner(c *cache.Cache, g GraphResolver, cfg *Config, opts ...RunnerOption) *Runner {
	if cfg == nil {
		cfg = NewConfig()
	}
	r := &Runner{cache: c, graph: g, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run builds the test package in testDir against ref and runs the resulting
// executable. The returned Result is non-nil whenever the build was
// attempted, also when err reports a failing phase.
func (r *Runner) Run(ctx context.Context, testDir string, ref recipe.Reference) (*Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid test configuration", err)
	}

	td, dir, err := recipe.LoadTest(testDir)
	if err != nil {
		return nil, err
	}
	// builders and the executable run inside the run folder
	if dir, err = filepath.Abs(dir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve test package folder", err)
	}

	settings := r.cfg.Settings()
	m, err := r.cache.FindPackage(ref, settings)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, errors.WrapWithContext(errors.ErrCodeResolution,
				"package under test is not in the cache: test must run after a successful package step",
				err, map[string]any{"ref": ref.String()})
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to look up package under test", err)
	}

	builder := r.builder
	if builder == nil {
		if builder, err = BuilderFor(td.Build); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "invalid test recipe", err)
		}
	}

	workDir := r.cfg.WorkDir()
	if workDir == "" {
		workDir = filepath.Join(dir, "build")
	} else if workDir, err = filepath.Abs(workDir); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to resolve work folder", err)
	}
	runDir := filepath.Join(workDir, uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create run folder", err)
	}
	if !r.cfg.KeepBuild() {
		defer func() {
			if err := os.RemoveAll(runDir); err != nil {
				slog.Warn("failed to remove run folder", "dir", runDir, "error", err)
			}
		}()
	}

	res := &Result{
		Reference:   ref,
		PackageID:   m.PackageID,
		TestPackage: td.Name,
		Status:      StatusFail,
		ExitCode:    -1,
	}
	res.Init(header.KindTestResult, header.APIVersion, r.cfg.Version())
	if r.cfg.KeepBuild() {
		res.RunDir = runDir
	}

	slog.Info("building test package", "ref", ref.String(), "test_package", td.Name, "run_dir", runDir)

	start := time.Now()
	buildErr := r.build(ctx, td, dir, runDir, ref, settings, builder, res)
	res.BuildDuration = time.Since(start)
	phaseDuration.WithLabelValues(string(PhaseBuild)).Observe(res.BuildDuration.Seconds())
	if buildErr != nil {
		res.FailedPhase = PhaseBuild
		runsTotal.WithLabelValues(string(StatusFail), string(PhaseBuild)).Inc()
		return res, buildErr
	}

	slog.Info("running test package", "ref", ref.String(), "executable", td.ExecutableName())

	start = time.Now()
	out, code, runErr := r.execute(ctx, runDir, td.ExecutableName(), settings.BuildType)
	res.TestDuration = time.Since(start)
	res.ExitCode = code
	res.Output = tail(out, r.cfg.OutputTail())
	phaseDuration.WithLabelValues(string(PhaseTest)).Observe(res.TestDuration.Seconds())
	if runErr != nil {
		res.FailedPhase = PhaseTest
		runsTotal.WithLabelValues(string(StatusFail), string(PhaseTest)).Inc()
		return res, errors.WrapWithContext(errors.ErrCodeExecution, "test package failed",
			runErr, map[string]any{"ref": ref.String(), "exit_code": code})
	}

	res.Status = StatusPass
	runsTotal.WithLabelValues(string(StatusPass), "").Inc()
	slog.Info("test package passed", "ref", ref.String(), "package_id", m.PackageID)
	return res, nil
}

func (r *Runner) build(ctx context.Context, td *recipe.TestDescriptor, srcDir, runDir string,
	ref recipe.Reference, settings recipe.Settings, builder Builder, res *Result) error {
	pkgs, err := r.consumerPackages(ctx, ref, settings)
	if err != nil {
		return err
	}

	for _, name := range td.Generators {
		g, err := generator.Get(name)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidRequest, "invalid test recipe", err)
		}
		if _, err := g.Generate(ctx, runDir, pkgs); err != nil {
			return errors.Wrap(errors.ErrCodeBuild, fmt.Sprintf("generator %s failed", name), err)
		}
	}

	out, err := builder.Build(ctx, Workspace{SourceDir: srcDir, BuildDir: runDir, BuildType: settings.BuildType})
	if err != nil {
		res.Output = tail(out, r.cfg.OutputTail())
		return errors.WrapWithContext(errors.ErrCodeBuild, "package not consumable", err,
			map[string]any{"ref": ref.String(), "test_package": td.Name})
	}
	return nil
}

// consumerPackages lists the package under test and everything a consumer
// receives with it, dependencies first.
func (r *Runner) consumerPackages(ctx context.Context, ref recipe.Reference, settings recipe.Settings) ([]generator.Package, error) {
	g, err := r.graph.ConsumerGraph(ctx, ref, settings)
	if err != nil {
		if !errors.HasCode(err, errors.ErrCodeResolution) {
			err = errors.Wrap(errors.ErrCodeResolution, "failed to resolve consumer requirements", err)
		}
		return nil, err
	}

	pkgs := make([]generator.Package, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		m, err := r.cache.ReadManifest(n.Reference, n.PackageID)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeResolution, fmt.Sprintf("failed to read manifest of %s", n.Reference), err)
		}
		pkgs = append(pkgs, generator.PackageFromManifest(m, r.cache.PackageDir(n.Reference, n.PackageID)))
	}
	return pkgs, nil
}

// execute runs the built executable from runDir. Multi-config generators
// place it under a build-type folder, which is tried second.
func (r *Runner) execute(ctx context.Context, runDir, name, buildType string) ([]byte, int, error) {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	path := filepath.Join(runDir, name)
	if _, err := os.Stat(path); err != nil {
		alt := filepath.Join(runDir, buildType, name)
		if _, altErr := os.Stat(alt); altErr != nil {
			return nil, -1, fmt.Errorf("executable %s not found in %s: %w", name, runDir, err)
		}
		path = alt
	}

	ctx, cancel := context.WithTimeout(ctx, defaults.RunTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path)
	cmd.Dir = runDir
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.Bytes(), 0, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return out.Bytes(), -1, fmt.Errorf("%s timed out after %s", name, defaults.RunTimeout)
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return out.Bytes(), exitErr.ExitCode(), fmt.Errorf("%s exited with code %d", name, exitErr.ExitCode())
	}
	return out.Bytes(), -1, fmt.Errorf("failed to run %s: %w", name, err)
}

// tail returns at most n trailing bytes of b.
func tail(b []byte, n int) string {
	if n <= 0 {
		return ""
	}
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
