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
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/rvarago/hopkg/pkg/logging"
)

const (
	name           = "hopkg"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Flags shared by several commands are built per command so that parsed
// values never leak between command trees.

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output file path (default: stdout)",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   "yaml",
		Usage:   "Output format (yaml, json, table)",
	}
}

// Execute runs the hopkg command line and exits non-zero on failure.
// SIGINT and SIGTERM cancel the running command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().Run(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// NewRootCommand returns the hopkg command tree.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:                  name,
		Usage:                 "Package and test header-only C++ libraries",
		Version:               version,
		HideVersion:           true,
		EnableShellCompletion: true,
		Description: fmt.Sprintf(`hopkg packages header-only C++ libraries from a recipe, verifies them
with a throwaway consumer project and shares them through OCI registries.

Version: %s
Commit:  %s
Built:   %s`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Config file (default is $HOME/.hopkg/config.yaml)",
				Sources: cli.EnvVars("HOPKG_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "cache",
				Usage:   "Local package cache folder (overrides cache_dir from the config file)",
				Sources: cli.EnvVars("HOPKG_CACHE"),
			},
			&cli.StringSliceFlag{
				Name:    "setting",
				Aliases: []string{"s"},
				Usage:   "Override a profile setting, e.g. -s build_type=Debug (repeatable)",
			},
			&cli.StringFlag{
				Name:  "metrics-file",
				Usage: "Write Prometheus metrics in text format to this file on exit",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logging.SetDefaultStructuredLoggerWithLevel(name, version, cmd.String("log-level"))
			slog.Debug("starting", "name", name, "version", version, "commit", commit, "date", date)
			return ctx, nil
		},
		After: func(_ context.Context, cmd *cli.Command) error {
			return writeMetrics(cmd.String("metrics-file"))
		},
		Commands: []*cli.Command{
			createCmd(),
			exportCmd(),
			testCmd(),
			infoCmd(),
			installCmd(),
			uploadCmd(),
			listCmd(),
			removeCmd(),
			versionCmd(),
		},
	}
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(_ context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(cmd.Root().Writer, "%s %s (commit %s, built %s)\n", name, version, commit, date)
			return err
		},
	}
}

// writeMetrics dumps the default registry to path for node-exporter style
// textfile collection.
func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	slog.Debug("metrics written", "path", path)
	return nil
}
