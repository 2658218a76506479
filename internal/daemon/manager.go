// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/printerchess/internal/config"
	"github.com/rs/zerolog"
)

const (
	readTimeout    = 15 * time.Second
	writeTimeout   = 60 * time.Second
	idleTimeout    = 120 * time.Second
	maxHeaderBytes = 1 << 20

	defaultShutdownTimeout = 10 * time.Second
)

// ShutdownHook releases a resource during shutdown. Hooks run after the API
// server and the worker have stopped, last registered first.
type ShutdownHook func(ctx context.Context) error

// Manager runs the HTTP API and the job worker as one unit.
type Manager interface {
	// Start blocks until ctx is canceled or the server or worker fails,
	// then shuts everything down.
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	RegisterShutdownHook(name string, hook ShutdownHook)
	// Addr is the bound API address, empty until Start has listened.
	Addr() string
}

type lifecycle int

const (
	idle lifecycle = iota
	running
	stopping
)

type step struct {
	name string
	run  ShutdownHook
}

type manager struct {
	cfg    config.APIConfig
	deps   Deps
	logger zerolog.Logger

	mu    sync.Mutex
	state lifecycle
	ln    net.Listener
	srv   *http.Server
	stopW func(context.Context) error
	hooks []step
}

// NewManager validates deps and returns a manager for cfg.
func NewManager(cfg config.APIConfig, deps Deps) (Manager, error) {
	if err := deps.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &manager{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With().Str("component", "manager").Logger(),
	}, nil
}

func (m *manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != idle {
		m.mu.Unlock()
		return ErrManagerStarted
	}
	m.state = running
	m.mu.Unlock()

	failed := make(chan error, 2)
	if err := m.serve(failed); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	m.runWorker(ctx, failed)

	var cause error
	select {
	case cause = <-failed:
		m.logger.Error().Err(cause).Str("event", "daemon.failed").Msg("stopping after component failure")
	case <-ctx.Done():
		m.logger.Info().Str("event", "daemon.stop_requested").Msg("stopping daemon")
	}

	// ctx may already be canceled; shutdown still gets its full budget
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
	defer cancel()
	if err := m.Shutdown(sctx); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

func (m *manager) serve(failed chan<- error) error {
	ln, err := net.Listen("tcp", m.cfg.ListenAddr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           m.deps.APIHandler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout / 2,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}

	m.mu.Lock()
	m.ln, m.srv = ln, srv
	m.mu.Unlock()

	m.logger.Info().Str("addr", ln.Addr().String()).Str("event", "api.listening").Msg("API listening")
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- fmt.Errorf("API server: %w", err)
		}
	}()
	return nil
}

// runWorker starts the worker on a context that survives ctx: jobs keep
// draining until the API has stopped accepting requests.
func (m *manager) runWorker(ctx context.Context, failed chan<- error) {
	w := m.deps.Worker
	if w == nil {
		return
	}
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	m.mu.Lock()
	m.stopW = func(sctx context.Context) error {
		cancel()
		select {
		case <-done:
			return nil
		case <-sctx.Done():
			return sctx.Err()
		}
	}
	m.mu.Unlock()

	go func() {
		defer close(done)
		if err := w.Run(wctx); err != nil && !errors.Is(err, context.Canceled) {
			failed <- fmt.Errorf("job worker: %w", err)
		}
	}()
}

func (m *manager) Addr() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ln == nil {
		return ""
	}
	return m.ln.Addr().String()
}

// Shutdown stops the API server, then the worker, then runs the hooks in
// reverse order. Every step runs even when an earlier one failed. Calling it
// again is a no-op.
func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case idle:
		m.mu.Unlock()
		return ErrManagerNotStarted
	case stopping:
		m.mu.Unlock()
		return nil
	}
	m.state = stopping
	steps := make([]step, 0, len(m.hooks)+2)
	if srv := m.srv; srv != nil {
		steps = append(steps, step{"api-server", srv.Shutdown})
	}
	if m.stopW != nil {
		steps = append(steps, step{"worker", m.stopW})
	}
	for i := len(m.hooks) - 1; i >= 0; i-- {
		steps = append(steps, m.hooks[i])
	}
	m.mu.Unlock()

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range steps {
		began := time.Now()
		err := s.run(sctx)
		level := zerolog.DebugLevel
		if err != nil {
			level = zerolog.ErrorLevel
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
		m.logger.WithLevel(level).Err(err).Str("step", s.name).Dur("took", time.Since(began)).Msg("shutdown step finished")
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown errors: %w", err)
	}
	m.logger.Info().Str("event", "daemon.stopped").Msg("daemon stopped")
	return nil
}

func (m *manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, step{name: name, run: hook})
}
