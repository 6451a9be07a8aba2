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

package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/rvarago/hopkg/pkg/header"
	"github.com/rvarago/hopkg/pkg/packager"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/testpkg"
)

// CreateResult is the output of the create command.
type CreateResult struct {
	header.Header `json:",inline" yaml:",inline"`

	Package *packager.Result `json:"package" yaml:"package"`
	Test    *testpkg.Result  `json:"test,omitempty" yaml:"test,omitempty"`
}

func packageVersionFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "version",
		Usage: "Package version when the recipe does not declare one",
	}
}

func keepBuildFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "keep-build",
		Usage: "Keep build and run folders for inspection",
	}
}

func createCmd() *cli.Command {
	return &cli.Command{
		Name:                  "create",
		EnableShellCompletion: true,
		Usage:                 "Export, package and test a recipe",
		ArgsUsage:             "<recipe-dir>",
		Description: `Runs the whole recipe pipeline for the hopkg.yaml in <recipe-dir>:

  1. resolve every requirement from the cache or the configured remotes
  2. export the recipe and the sources matched by exportsSources
  3. package the files matched by packagePatterns and compute the package id
  4. build and run the test package in <recipe-dir>/test_package, if present

Nothing is copied when a requirement cannot be resolved or no source matches.

# Examples

Package kitten at version 7.0.0 and test it:
  hopkg create --version 7.0.0 .

Package only:
  hopkg create --version 7.0.0 --skip-test .`,
		Flags: []cli.Flag{
			packageVersionFlag(),
			keepBuildFlag(),
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Repackage even when an identical package is cached",
			},
			&cli.StringFlag{
				Name:  "test-folder",
				Usage: "Test package folder (default: <recipe-dir>/test_package)",
			},
			&cli.BoolFlag{
				Name:  "skip-test",
				Usage: "Do not build and run the test package",
			},
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			desc, dir, err := recipe.Load(argOrDot(cmd))
			if err != nil {
				return err
			}

			p, err := packager.New(e.cache, e.resolver, packager.NewConfig(
				packager.WithSettings(e.settings),
				packager.WithReferenceVersion(cmd.String("version")),
				packager.WithForce(cmd.Bool("force")),
				packager.WithKeepBuild(cmd.Bool("keep-build")),
				packager.WithVersion(version),
			))
			if err != nil {
				return err
			}

			pkg, err := p.Create(ctx, desc, dir)
			if err != nil {
				return err
			}

			out := &CreateResult{Package: pkg}
			out.Init(header.KindCreateResult, header.APIVersion, version)

			testDir := cmd.String("test-folder")
			if testDir == "" {
				testDir = filepath.Join(dir, recipe.TestPackageDir)
			}

			var testErr error
			switch {
			case cmd.Bool("skip-test"):
				slog.Info("test package skipped", "ref", pkg.Reference.String())
			case !dirExists(testDir):
				slog.Info("no test package found", "dir", testDir)
			default:
				runner := testpkg.NewRunner(e.cache, e.resolver, newTestConfig(cmd, e))
				out.Test, testErr = runner.Run(ctx, testDir, pkg.Reference)
			}

			if err := writeOutput(ctx, cmd, out); err != nil {
				return err
			}
			return testErr
		},
	}
}

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "export",
		EnableShellCompletion: true,
		Usage:                 "Copy a recipe and its sources into the cache",
		ArgsUsage:             "<recipe-dir>",
		Flags: []cli.Flag{
			packageVersionFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			desc, dir, err := recipe.Load(argOrDot(cmd))
			if err != nil {
				return err
			}

			p, err := packager.New(e.cache, e.resolver, packager.NewConfig(
				packager.WithSettings(e.settings),
				packager.WithReferenceVersion(cmd.String("version")),
				packager.WithVersion(version),
			))
			if err != nil {
				return err
			}

			ref, err := p.Export(ctx, desc, dir)
			if err != nil {
				return err
			}

			return writeOutput(ctx, cmd, map[string]string{
				"reference":    ref.String(),
				"exportDir":    e.cache.ExportDir(ref),
				"exportSource": e.cache.ExportSourceDir(ref),
			})
		},
	}
}

func testCmd() *cli.Command {
	return &cli.Command{
		Name:                  "test",
		EnableShellCompletion: true,
		Usage:                 "Build and run a test package against a cached package",
		ArgsUsage:             "<test-dir> <reference>",
		Description: `Builds the consumer project in <test-dir> against the cached package
<reference> and runs its executable. The package must have been created first.

# Examples

  hopkg test test_package kitten/7.0.0`,
		Flags: []cli.Flag{
			keepBuildFlag(),
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}
			if cmd.Args().Len() != 2 {
				return fmt.Errorf("expected <test-dir> <reference>, got %d arguments", cmd.Args().Len())
			}
			ref, err := parseRefArg(cmd, 1)
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			runner := testpkg.NewRunner(e.cache, e.resolver, newTestConfig(cmd, e))
			res, runErr := runner.Run(ctx, cmd.Args().Get(0), ref)
			if res != nil {
				if err := writeOutput(ctx, cmd, res); err != nil {
					return err
				}
			}
			return runErr
		},
	}
}

func newTestConfig(cmd *cli.Command, e *env) *testpkg.Config {
	return testpkg.NewConfig(
		testpkg.WithSettings(e.settings),
		testpkg.WithKeepBuild(cmd.Bool("keep-build")),
		testpkg.WithVersion(version),
	)
}

func argOrDot(cmd *cli.Command) string {
	if p := cmd.Args().First(); p != "" {
		return p
	}
	return "."
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if !stderrors.Is(err, fs.ErrNotExist) {
			slog.Warn("cannot stat folder", "path", path, "error", err)
		}
		return false
	}
	return info.IsDir()
}
