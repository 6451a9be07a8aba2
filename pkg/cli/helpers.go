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
	"golang.org/x/time/rate"

	"github.com/rvarago/hopkg/pkg/cache"
	"github.com/rvarago/hopkg/pkg/config"
	"github.com/rvarago/hopkg/pkg/defaults"
	"github.com/rvarago/hopkg/pkg/recipe"
	"github.com/rvarago/hopkg/pkg/resolver"
	"github.com/rvarago/hopkg/pkg/serializer"
)

// env is what every command needs: configuration, the cache, the active
// profile and a resolver over the configured remotes.
type env struct {
	cfg      *config.Config
	cache    *cache.Cache
	settings recipe.Settings
	resolver *resolver.Resolver
}

// loadEnv builds the command environment from the global flags. An explicit
// --config must exist; the default config file is optional.
func loadEnv(cmd *cli.Command) (*env, error) {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	cacheDir := cmd.String("cache")
	if cacheDir == "" {
		cacheDir = cfg.CacheDir
	}
	c, err := cache.New(cacheDir)
	if err != nil {
		return nil, err
	}

	settings, err := cfg.Profile()
	if err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	if err := settings.Apply(cmd.StringSlice("setting")); err != nil {
		return nil, fmt.Errorf("invalid --setting: %w", err)
	}

	remotes, err := cfg.OCIRemotes()
	if err != nil {
		return nil, err
	}
	fetchers := make([]resolver.Fetcher, 0, len(remotes))
	for _, r := range remotes {
		fetchers = append(fetchers, resolver.NewOCIFetcher(r))
	}

	res := resolver.New(c,
		resolver.WithRemotes(fetchers...),
		resolver.WithConcurrency(cfg.Concurrency),
		resolver.WithRateLimit(rate.Limit(defaults.RemoteLookupsPerSecond), defaults.RemoteLookupsPerSecond),
	)

	slog.Debug("environment loaded",
		"cache", c.Root(),
		"remotes", len(remotes),
		"settings", settings.Lines())

	return &env{cfg: cfg, cache: c, settings: settings, resolver: res}, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	return config.LoadOrDefault(path)
}

// parseOutputFormat returns the --format value if it is supported.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	f := serializer.Format(cmd.String("format"))
	if f.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported: %v)", f, serializer.SupportedFormats())
	}
	return f, nil
}

// parseRefArg parses the positional package reference at index i.
func parseRefArg(cmd *cli.Command, i int) (recipe.Reference, error) {
	arg := cmd.Args().Get(i)
	if arg == "" {
		return recipe.Reference{}, fmt.Errorf("package reference argument is required (name/version[@user/channel])")
	}
	ref, err := recipe.ParseReference(arg)
	if err != nil {
		return recipe.Reference{}, fmt.Errorf("invalid package reference %q: %w", arg, err)
	}
	return ref, nil
}

// writeOutput serializes v to --output in --format.
func writeOutput(ctx context.Context, cmd *cli.Command, v any) error {
	outFormat, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}

	ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
	defer func() {
		if err := ser.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}()

	return ser.Serialize(ctx, v)
}
