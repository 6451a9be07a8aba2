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

	"github.com/urfave/cli/v3"

	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/errors"
	"github.com/rvarago/hopkg/pkg/oci"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/resolver"
)

// InstallResult is the output of the install command.
type InstallResult struct {
	Package resolver.Resolved `json:"package" yaml:"package"`
	Graph   *resolver.Graph   `json:"consumerGraph" yaml:"consumerGraph"`
}

func installCmd() *cli.Command {
	return &cli.Command{
		Name:                  "install",
		EnableShellCompletion: true,
		Usage:                 "Fetch a package and its consumer requirements into the cache",
		ArgsUsage:             "<reference>",
		Description: `Resolves <reference> from the local cache or the configured remotes, in
order, then does the same for everything the package hands to its consumers.

# Examples

  hopkg install kitten/7.0.0`,
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

			res, err := e.resolver.Resolve(ctx, recipe.Requirement{Ref: ref.String(), Scope: recipe.ScopeTransitive}, e.settings)
			if err != nil {
				return err
			}
			g, err := e.resolver.ConsumerGraph(ctx, ref, e.settings)
			if err != nil {
				return err
			}

			return writeOutput(ctx, cmd, &InstallResult{Package: *res, Graph: g})
		},
	}
}

func uploadCmd() *cli.Command {
	return &cli.Command{
		Name:                  "upload",
		EnableShellCompletion: true,
		Usage:                 "Push a cached package to an OCI remote",
		ArgsUsage:             "<reference>",
		Description: `Pushes the cached package of <reference> matching the active profile as an
OCI artifact. The tag is the package version, or version_user_channel when
the reference has a user and channel.

# Examples

  hopkg upload --remote local kitten/7.0.0`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "remote",
				Aliases: []string{"r"},
				Usage:   "Name of the configured remote (default: the first one)",
			},
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

			remote, err := selectRemote(e, cmd.String("remote"))
			if err != nil {
				return err
			}

			m, err := e.cache.FindPackage(ref, e.settings)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, defaults.UploadTimeout)
			defer cancel()

			res, err := oci.Push(ctx, remote, oci.Artifact{
				PackageDir:  e.cache.PackageDir(ref, m.PackageID),
				MetadataDir: e.cache.MetadataDir(ref, m.PackageID),
				Reference:   ref,
				PackageID:   m.PackageID,
				Revision:    m.Revision,
				HeaderOnly:  m.HeaderOnly,
				Created:     m.Created,
			})
			if err != nil {
				return err
			}
			return writeOutput(ctx, cmd, res)
		},
	}
}

func selectRemote(e *env, name string) (*oci.Remote, error) {
	if name != "" {
		return e.cfg.Remote(name)
	}
	remotes, err := e.cfg.OCIRemotes()
	if err != nil {
		return nil, err
	}
	if len(remotes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			"no remotes configured: add one under 'remotes' in the config file")
	}
	return remotes[0], nil
}
