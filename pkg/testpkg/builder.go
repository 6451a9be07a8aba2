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
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/recipe"
)

// Workspace is the folder layout a builder works in. Generated find modules
// live in BuildDir, which is also where the executable is expected.
type Workspace struct {
	SourceDir string
	BuildDir  string
	BuildType string
}

// Builder configures and compiles a test package. It returns the combined
// output of the tools it ran, also on failure.
type Builder interface {
	Build(ctx context.Context, ws Workspace) ([]byte, error)
}

// BuilderFor returns the builder a test recipe asks for.
func BuilderFor(spec recipe.BuildSpec) (Builder, error) {
	switch spec.Tool {
	case recipe.BuildToolCMake, "":
		return &CMakeBuilder{}, nil
	case recipe.BuildToolCommand:
		return &CommandBuilder{ConfigureArgs: spec.Configure, BuildArgs: spec.Build}, nil
	default:
		return nil, fmt.Errorf("unknown build tool %q", spec.Tool)
	}
}

// CMakeBuilder configures with "cmake <source>" pointing CMAKE_MODULE_PATH at
// the generated find modules, then runs "cmake --build .".
type CMakeBuilder struct {
	// Program overrides the cmake binary.
	Program string
}

// Build implements Builder.
func (b *CMakeBuilder) Build(ctx context.Context, ws Workspace) ([]byte, error) {
	program := b.Program
	if program == "" {
		program = "cmake"
	}

	var out bytes.Buffer
	configure := []string{
		program, ws.SourceDir,
		"-DCMAKE_MODULE_PATH=" + ws.BuildDir,
		"-DCMAKE_BUILD_TYPE=" + ws.BuildType,
	}
	if err := runStep(ctx, defaults.ConfigureTimeout, ws.BuildDir, configure, &out); err != nil {
		return out.Bytes(), fmt.Errorf("configure failed: %w", err)
	}
	if err := runStep(ctx, defaults.BuildTimeout, ws.BuildDir, []string{program, "--build", "."}, &out); err != nil {
		return out.Bytes(), fmt.Errorf("build failed: %w", err)
	}
	return out.Bytes(), nil
}

// CommandBuilder runs argv lists from the test recipe. Arguments may use the
// {source}, {build} and {build_type} placeholders.
type CommandBuilder struct {
	ConfigureArgs []string
	BuildArgs     []string
}

// Build implements Builder.
func (b *CommandBuilder) Build(ctx context.Context, ws Workspace) ([]byte, error) {
	if len(b.BuildArgs) == 0 {
		return nil, fmt.Errorf("no build command")
	}

	var out bytes.Buffer
	if len(b.ConfigureArgs) > 0 {
		if err := runStep(ctx, defaults.ConfigureTimeout, ws.BuildDir, expand(b.ConfigureArgs, ws), &out); err != nil {
			return out.Bytes(), fmt.Errorf("configure failed: %w", err)
		}
	}
	if err := runStep(ctx, defaults.BuildTimeout, ws.BuildDir, expand(b.BuildArgs, ws), &out); err != nil {
		return out.Bytes(), fmt.Errorf("build failed: %w", err)
	}
	return out.Bytes(), nil
}

func expand(argv []string, ws Workspace) []string {
	r := strings.NewReplacer(
		"{source}", ws.SourceDir,
		"{build}", ws.BuildDir,
		"{build_type}", ws.BuildType,
	)
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = r.Replace(a)
	}
	return out
}

// runStep runs argv in dir, appending its combined output to out.
func runStep(ctx context.Context, timeout time.Duration, dir string, argv []string, out *bytes.Buffer) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", argv[0], err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Debug("running build step", "cmd", strings.Join(argv, " "), "dir", dir)

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%s timed out after %s", argv[0], timeout)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}
