// baatcheet - a terminal client for the BaatCheet AI chat service.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/baatcheet/baatcheet-cli/internal/app"
	"github.com/baatcheet/baatcheet-cli/internal/cli"
	"github.com/baatcheet/baatcheet-cli/internal/config"
	"github.com/baatcheet/baatcheet-cli/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

// run is main without os.Exit, so deferred cleanup always happens.
func run() int {
	cmd, args := cli.Parse(os.Args[1:])

	fail := func(err error) int {
		cli.DisplayError(os.Stderr, err, args.JSON)
		return cli.GetExitCode(err)
	}

	cfg, err := loadConfig(args.ConfigPath)
	if err != nil {
		return fail(err)
	}
	if args.Verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var a *app.App
	if cmd.NeedsApp() {
		a, err = app.New(cfg, logger)
		if err != nil {
			return fail(cli.WrapError(err, "start"))
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn("shutdown", zap.Error(err))
			}
		}()
	}

	if err := cli.NewRunner(a, cfg, args).Run(ctx, cmd, args); err != nil {
		logger.Debug("command failed", zap.String("command", args.Name), zap.Error(err))
		return fail(err)
	}
	return cli.ExitSuccess
}

// loadConfig reads --config when given, otherwise the first config file
// found in the config directory. A broken default file is reported but
// the built-in defaults are still used.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	cfg, err := config.Load()
	if cfg == nil {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cfg, nil
}
