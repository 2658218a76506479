// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/printerchess/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		ListenAddr:      "127.0.0.1:0",
		ShutdownTimeout: 2 * time.Second,
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
}

// blockingWorker runs until its context is canceled.
type blockingWorker struct {
	started chan struct{}
	stopped chan struct{}
}

func newBlockingWorker() *blockingWorker {
	return &blockingWorker{started: make(chan struct{}), stopped: make(chan struct{})}
}

func (w *blockingWorker) Run(ctx context.Context) error {
	close(w.started)
	<-ctx.Done()
	close(w.stopped)
	return nil
}

type failingWorker struct{ err error }

func (w failingWorker) Run(context.Context) error { return w.err }

func waitForAddr(t *testing.T, m Manager) string {
	t.Helper()
	var addr string
	require.Eventually(t, func() bool {
		addr = m.Addr()
		return addr != ""
	}, 2*time.Second, 10*time.Millisecond)
	return addr
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{
		Timeout:   2 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestNewManager_ValidatesDeps(t *testing.T) {
	_, err := NewManager(testAPIConfig(), Deps{Logger: zerolog.Nop(), APIHandler: okHandler()})
	assert.ErrorIs(t, err, ErrMissingLogger)

	_, err = NewManager(testAPIConfig(), Deps{Logger: testLogger()})
	assert.ErrorIs(t, err, ErrMissingAPIHandler)

	mgr, err := NewManager(testAPIConfig(), Deps{Logger: testLogger(), APIHandler: okHandler()})
	require.NoError(t, err)
	assert.Empty(t, mgr.Addr())
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	mgr, err := NewManager(testAPIConfig(), Deps{Logger: testLogger(), APIHandler: okHandler()})
	require.NoError(t, err)
	assert.ErrorIs(t, mgr.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManager_ServesAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	worker := newBlockingWorker()
	mgr, err := NewManager(testAPIConfig(), Deps{
		Logger:     testLogger(),
		APIHandler: okHandler(),
		Worker:     worker,
	})
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) ShutdownHook {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}
	mgr.RegisterShutdownHook("first", record("first"))
	mgr.RegisterShutdownHook("second", record("second"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	addr := waitForAddr(t, mgr)
	<-worker.started

	status, body := get(t, "http://"+addr+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	assert.ErrorIs(t, mgr.Start(ctx), ErrManagerStarted)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop")
	}

	<-worker.stopped
	assert.Equal(t, []string{"second", "first"}, order)
	// a second shutdown is a no-op
	assert.NoError(t, mgr.Shutdown(context.Background()))
}

func TestManager_HookErrorsAreJoined(t *testing.T) {
	mgr, err := NewManager(testAPIConfig(), Deps{Logger: testLogger(), APIHandler: okHandler()})
	require.NoError(t, err)

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	mgr.RegisterShutdownHook("a", func(context.Context) error { return errA })
	mgr.RegisterShutdownHook("b", func(context.Context) error { return errB })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()
	waitForAddr(t, mgr)
	cancel()

	err = <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}

func TestManager_WorkerFailureStopsServer(t *testing.T) {
	boom := errors.New("boom")
	mgr, err := NewManager(testAPIConfig(), Deps{
		Logger:     testLogger(),
		APIHandler: okHandler(),
		Worker:     failingWorker{err: boom},
	})
	require.NoError(t, err)

	hookRan := make(chan struct{})
	mgr.RegisterShutdownHook("probe", func(context.Context) error {
		close(hookRan)
		return nil
	})

	select {
	case err := <-startAsync(mgr):
		assert.ErrorIs(t, err, boom)
	case <-time.After(5 * time.Second):
		t.Fatal("manager did not stop after worker failure")
	}
	<-hookRan
}

func TestManager_ListenFailure(t *testing.T) {
	cfg := testAPIConfig()
	cfg.ListenAddr = "256.0.0.1:0"
	mgr, err := NewManager(cfg, Deps{Logger: testLogger(), APIHandler: okHandler()})
	require.NoError(t, err)

	err = mgr.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start API server")
}

func startAsync(m Manager) <-chan error {
	done := make(chan error, 1)
	go func() { done <- m.Start(context.Background()) }()
	return done
}
