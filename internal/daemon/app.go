// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/printerchess/internal/config"
	"github.com/rs/zerolog"
)

// ReloadFunc applies an accepted configuration to running components.
type ReloadFunc func(cfg config.AppConfig)

// App adds configuration reloads (file watcher and SIGHUP) around a Manager.
type App struct {
	logger   zerolog.Logger
	manager  Manager
	holder   *config.ConfigHolder
	onReload ReloadFunc
	// reloadSignal triggers a reload; nil disables it.
	reloadSignal os.Signal
}

// NewApp builds an App. holder and onReload may be nil, which disables
// reloading.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.ConfigHolder, onReload ReloadFunc) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		holder:       holder,
		onReload:     onReload,
		reloadSignal: syscall.SIGHUP,
	}
}

func (a *App) Manager() Manager { return a.manager }

// Run blocks until ctx ends or the manager fails.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	g, ctx := errgroup.WithContext(ctx)

	if a.holder != nil {
		// a watcher failure only costs hot reload
		if err := a.holder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_unavailable").Msg("config file changes will not be picked up")
		}
		if a.onReload != nil {
			updates := make(chan config.AppConfig, 1)
			a.holder.RegisterListener(updates)
			g.Go(func() error { return a.apply(ctx, updates) })
		}
		if a.reloadSignal != nil {
			g.Go(func() error { return a.reloadOnSignal(ctx) })
		}
	}

	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})
	return g.Wait()
}

func (a *App) apply(ctx context.Context, updates <-chan config.AppConfig) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg := <-updates:
			a.onReload(cfg)
		}
	}
}

func (a *App) reloadOnSignal(ctx context.Context) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, a.reloadSignal)
	defer signal.Stop(sig)

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-sig:
			a.logger.Info().Str("event", "config.reload_signal").Str("signal", s.String()).Msg("reloading configuration")
			if err := a.holder.Reload(ctx); err != nil {
				a.logger.Warn().Err(err).Str("event", "config.reload_failed").Msg("reload rejected")
			}
		}
	}
}
