// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Editors tend to emit several events per save; they collapse into one reload.
const reloadDebounce = 500 * time.Millisecond

// ConfigHolder serves the active configuration and swaps it on reload. A
// rejected file never replaces a valid configuration.
type ConfigHolder struct {
	active atomic.Pointer[AppConfig]
	loader *Loader
	logger zerolog.Logger

	mu        sync.Mutex
	listeners []chan<- AppConfig
	watcher   *fsnotify.Watcher
	stopped   chan struct{}
}

func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	h := &ConfigHolder{loader: loader, logger: xlog.WithComponent("config")}
	h.active.Store(&initial)
	return h
}

// Get returns a copy of the active configuration.
func (h *ConfigHolder) Get() AppConfig {
	return *h.active.Load()
}

// Reload re-reads file and environment. Listeners are told only about
// configurations that passed validation.
func (h *ConfigHolder) Reload(_ context.Context) error {
	next, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).
			Str(xlog.FieldEvent, "config.reload_rejected").
			Msg("keeping previous configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	prev := h.active.Swap(&next)
	for _, c := range diffConfig(*prev, next) {
		level := zerolog.InfoLevel
		if c.restart {
			level = zerolog.WarnLevel
		}
		h.logger.WithLevel(level).Bool("restart_required", c.restart).Str("field", c.field).Str("old", c.before).Str("new", c.after).Msg("configuration changed")
	}

	h.mu.Lock()
	listeners := append([]chan<- AppConfig(nil), h.listeners...)
	h.mu.Unlock()
	for _, ch := range listeners {
		select {
		case ch <- next:
		default:
			h.logger.Warn().Str(xlog.FieldEvent, "config.listener_busy").Msg("listener still busy with previous update")
		}
	}

	h.logger.Info().Str(xlog.FieldEvent, "config.reloaded").Msg("configuration reloaded")
	return nil
}

// RegisterListener subscribes ch to accepted reloads. Delivery never blocks:
// a listener whose buffer is full misses that update.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, ch)
}

// StartWatcher reloads whenever the config file changes, until ctx ends or
// Stop is called. It does nothing when the loader has no file.
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	path := h.loader.ConfigPath()
	if path == "" {
		h.logger.Info().Str(xlog.FieldEvent, "config.watcher_disabled").Msg("no config file, hot reload disabled")
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// the directory, not the file: atomic saves replace the inode
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	stopped := make(chan struct{})
	h.mu.Lock()
	h.watcher, h.stopped = w, stopped
	h.mu.Unlock()

	h.logger.Info().Str(xlog.FieldEvent, "config.watcher_started").Str(xlog.FieldPath, path).Msg("watching config file")
	go func() {
		defer close(stopped)
		h.watch(ctx, w, filepath.Clean(path))
	}()
	return nil
}

func (h *ConfigHolder) watch(ctx context.Context, w *fsnotify.Watcher, path string) {
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) == path && ev.Op&relevant != 0 {
				timer.Reset(reloadDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			h.logger.Warn().Err(err).Str(xlog.FieldEvent, "config.watcher_error").Msg("config watcher error")
		case <-timer.C:
			_ = h.Reload(ctx)
		}
	}
}

// Stop ends the watcher started by StartWatcher and waits for it.
func (h *ConfigHolder) Stop() {
	h.mu.Lock()
	w, stopped := h.watcher, h.stopped
	h.watcher = nil
	h.mu.Unlock()
	if w == nil {
		return
	}
	_ = w.Close()
	<-stopped
}

type configChange struct {
	field         string
	before, after string
	restart       bool
}

// diffConfig lists the settings operators usually care about. Listen
// address and Moonraker endpoint are bound at startup.
func diffConfig(a, b AppConfig) []configChange {
	var out []configChange
	add := func(field string, x, y any, restart bool) {
		before, after := fmt.Sprint(x), fmt.Sprint(y)
		if before != after {
			out = append(out, configChange{field: field, before: before, after: after, restart: restart})
		}
	}
	add("motion.mode", a.Motion.Mode, b.Motion.Mode, false)
	add("motion.routing", a.Motion.Routing, b.Motion.Routing, false)
	add("motion.feed", a.Motion.Feed, b.Motion.Feed, false)
	add("board", a.Board, b.Board, false)
	add("log.level", a.Log.Level, b.Log.Level, false)
	add("moonraker.url", a.Moonraker.URL, b.Moonraker.URL, true)
	add("api.listenAddr", a.API.ListenAddr, b.API.ListenAddr, true)
	return out
}
