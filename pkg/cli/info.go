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
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/resolver"
)

// PackageInfo is the output of the info command.
type PackageInfo struct {
	Manifest *cache.Manifest `json:"manifest" yaml:"manifest"`
	Graph    *resolver.Graph `json:"consumerGraph" yaml:"consumerGraph"`
}

func infoCmd() *cli.Command {
	return &cli.Command{
		Name:                  "info",
		EnableShellCompletion: true,
		Usage:                 "Show a cached package and what its consumers receive",
		ArgsUsage:             "<reference>",
		Flags: []cli.Flag{
			outputFlag(),
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := parseOutputFormat(cmd); err != nil {
				return err
			}
			ref, err := parseRefArg(cmd, 0)
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			m, err := e.cache.FindPackage(ref, e.settings)
			if err != nil {
				return err
			}
			g, err := e.resolver.ConsumerGraph(ctx, ref, e.settings)
			if err != nil {
				return err
			}

			return writeOutput(ctx, cmd, &PackageInfo{Manifest: m, Graph: g})
		},
	}
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:                  "list",
		EnableShellCompletion: true,
		Usage:                 "List references in the local cache",
		Flags: []cli.Flag{
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

			refs, err := e.cache.ListReferences()
			if err != nil {
				return err
			}

			out := make([]string, 0, len(refs))
			for _, r := range refs {
				out = append(out, r.String())
			}
			return writeOutput(ctx, cmd, out)
		},
	}
}

func removeCmd() *cli.Command {
	return &cli.Command{
		Name:                  "remove",
		EnableShellCompletion: true,
		Usage:                 "Remove a reference or one of its packages from the local cache",
		ArgsUsage:             "<reference>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "package-id",
				Aliases: []string{"p"},
				Usage:   "Remove only this package, keeping the exported recipe",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			ref, err := parseRefArg(cmd, 0)
			if err != nil {
				return err
			}

			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			if id := cmd.String("package-id"); id != "" {
				if err := e.cache.RemovePackage(ref, id); err != nil {
					return fmt.Errorf("failed to remove package %s of %s: %w", id, ref, err)
				}
				slog.Info("package removed", "ref", ref.String(), "package_id", id)
				return nil
			}

			if err := e.cache.RemoveReference(ref); err != nil {
				return fmt.Errorf("failed to remove %s: %w", ref, err)
			}
			slog.Info("reference removed", "ref", ref.String())
			return nil
		},
	}
}
