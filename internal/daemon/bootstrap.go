// SPDX-License-Identifier: MIT

// Package daemon wires the printerchess components together and owns their
// lifecycle.
package daemon

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ManuGH/printerchess/internal/api"
	"github.com/ManuGH/printerchess/internal/config"
	"github.com/ManuGH/printerchess/internal/health"
	"github.com/ManuGH/printerchess/internal/jobs"
	"github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/moonraker"
	"github.com/ManuGH/printerchess/internal/motion"
	"github.com/ManuGH/printerchess/internal/store"
)

// JobsDBName is the SQLite file inside the data directory.
const JobsDBName = "jobs.db"

// Options controls Bootstrap.
type Options struct {
	ConfigPath string
	Version    string
	// LogOutput defaults to stdout.
	LogOutput io.Writer
}

// Bootstrap loads configuration and builds the full runtime: store, printer
// client, job runner, HTTP API and lifecycle manager. Jobs interrupted by a
// previous shutdown are recovered before the App is returned.
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	loader := config.NewLoader(opts.ConfigPath, opts.Version)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	out := opts.LogOutput
	if out == nil {
		out = os.Stdout
	}
	log.Configure(log.Config{
		Level:   cfg.Log.Level,
		Output:  out,
		Service: "printerchess",
		Version: opts.Version,
	})
	logger := log.WithComponent("daemon")
	for _, key := range loader.UnknownEnvKeys() {
		logger.Warn().Str("key", key).Msg("unknown environment variable ignored")
	}

	logger.Info().
		Str("version", opts.Version).
		Str("listen", cfg.API.ListenAddr).
		Str(log.FieldBaseURL, cfg.Moonraker.URL).
		Str(log.FieldMode, cfg.Motion.Mode).
		Msg("Starting printerchess daemon")

	printer := moonraker.NewFromConfig(cfg.Moonraker)
	if err := health.PerformStartupChecks(ctx, cfg, printer); err != nil {
		return nil, err
	}

	compiler, err := motion.NewCompiler(cfg)
	if err != nil {
		return nil, fmt.Errorf("build compiler: %w", err)
	}

	st, err := store.Open(filepath.Join(cfg.DataDir, JobsDBName), store.DefaultSQLiteConfig())
	if err != nil {
		return nil, err
	}

	runner := jobs.NewRunner(st, printer, compiler, cfg.Jobs)
	if err := runner.Resume(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("resume jobs: %w", err)
	}
	bridge := jobs.NewBridge(printer, compiler, runner)

	hm := health.NewManager(opts.Version)
	hm.RegisterChecker(health.NewStoreChecker(st))
	hm.RegisterChecker(health.NewDirChecker("data_dir", cfg.DataDir))
	hm.RegisterChecker(health.NewPrinterChecker(printer, 3*time.Second))

	srv := api.New(cfg.API, api.Deps{
		Runner: runner,
		Bridge: bridge,
		Store:  st,
		Health: hm,
	})

	mgr, err := NewManager(cfg.API, Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
		Worker:     runner,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	holder := config.NewConfigHolder(cfg, loader)
	// hooks run LIFO: the watcher stops before the store closes
	mgr.RegisterShutdownHook("store", func(context.Context) error { return st.Close() })
	mgr.RegisterShutdownHook("config-watcher", func(context.Context) error {
		holder.Stop()
		return nil
	})

	return NewApp(logger, mgr, holder, reloader(runner, bridge)), nil
}

// reloader swaps board geometry, motion settings and pacing in place. The
// listen address and queue size need a restart.
func reloader(runner *jobs.Runner, bridge *jobs.Bridge) ReloadFunc {
	logger := log.WithComponent("reload")
	return func(cfg config.AppConfig) {
		compiler, err := motion.NewCompiler(cfg)
		if err != nil {
			logger.Warn().Err(err).Str(log.FieldEvent, "config.apply_failed").Msg("keeping previous motion settings")
			return
		}
		runner.SetCompiler(compiler)
		bridge.SetCompiler(compiler)
		runner.SetPacing(cfg.Jobs)
		logger.Info().
			Str(log.FieldEvent, "config.applied").
			Str(log.FieldMode, cfg.Motion.Mode).
			Msg("motion settings applied")
	}
}

// WaitForShutdown returns a context canceled on interrupt or termination.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
