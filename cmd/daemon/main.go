// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command printerchessd serves the printerchess HTTP API and job worker.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/printerchess/internal/daemon"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:], os.Stdout, os.Stderr))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// safe defaults until the config is loaded
	xlog.Configure(xlog.Config{
		Level:   "info",
		Service: "printerchess",
		Version: version.Version,
	})
	logger := xlog.WithComponent("daemon")

	ctx, stop := daemon.WaitForShutdown()
	defer stop()

	path := strings.TrimSpace(*configPath)

	app, err := daemon.Bootstrap(ctx, daemon.Options{
		ConfigPath: path,
		Version:    version.Version,
	})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.failed").
			Str("config_path", path).
			Msg("failed to start daemon")
	}

	// Bootstrap reconfigured the global logger
	logger = xlog.WithComponent("daemon")

	if err := app.Run(ctx); err != nil && !errors.Is(err, ctx.Err()) {
		logger.Error().Err(err).Str("event", "daemon.failed").Msg("daemon stopped with error")
		stop()
		os.Exit(1)
	}
	logger.Info().Str("event", "daemon.stopped").Msg("daemon stopped")
}
