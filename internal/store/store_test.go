// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"), DefaultSQLiteConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestCreateGet(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	in := Job{ID: "a", Source: SourcePGN, Input: "1. e4 e5", Mode: "legacy", TotalChunks: 4}
	require.NoError(t, s.Create(ctx, &in))
	assert.Equal(t, StatusQueued, in.Status)

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Fatalf("job mismatch (-want +got):\n%s", diff)
	}

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for _, id := range []string{"one", "two", "three"} {
		require.NoError(t, s.Create(ctx, &Job{ID: id, Source: SourceUCI, Input: "e2e4", Mode: "magnet"}))
	}

	jobs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "three", jobs[0].ID)
	assert.Equal(t, "two", jobs[1].ID)
}

func TestProgressAndStatus(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &Job{ID: "j", Source: SourceUCI, Input: "e2e4", Mode: "legacy", TotalChunks: 3}))

	require.NoError(t, s.SetStatus(ctx, "j", StatusRunning, ""))
	require.NoError(t, s.UpdateProgress(ctx, "j", 2))
	require.NoError(t, s.SetStatus(ctx, "j", StatusDone, ""))

	j, err := s.Get(ctx, "j")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, j.Status)
	assert.Equal(t, 2, j.SentChunks)
	assert.True(t, j.UpdatedAt.After(j.CreatedAt))

	// Terminal jobs do not change status again.
	assert.ErrorIs(t, s.SetStatus(ctx, "j", StatusCanceled, "late"), ErrNotFound)
	assert.ErrorIs(t, s.UpdateProgress(ctx, "nope", 1), ErrNotFound)
}

func TestCancelQueuedOnlyTouchesQueued(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for _, id := range []string{"q", "r"} {
		require.NoError(t, s.Create(ctx, &Job{ID: id, Source: SourceUCI, Input: "e2e4", Mode: "legacy"}))
	}
	require.NoError(t, s.SetStatus(ctx, "r", StatusRunning, ""))

	require.NoError(t, s.CancelQueued(ctx, "q"))
	q, err := s.Get(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, q.Status)

	// a started job is left to the worker
	assert.ErrorIs(t, s.CancelQueued(ctx, "r"), ErrNotFound)
	r, err := s.Get(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, r.Status)

	assert.ErrorIs(t, s.CancelQueued(ctx, "q"), ErrNotFound)
	assert.ErrorIs(t, s.CancelQueued(ctx, "missing"), ErrNotFound)
}

func TestRecoverInterrupted(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for _, id := range []string{"r", "q1", "q2", "d"} {
		require.NoError(t, s.Create(ctx, &Job{ID: id, Source: SourceUCI, Input: "e2e4", Mode: "legacy"}))
	}
	require.NoError(t, s.SetStatus(ctx, "r", StatusRunning, ""))
	require.NoError(t, s.SetStatus(ctx, "d", StatusDone, ""))

	ids, err := s.RecoverInterrupted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, ids)

	r, err := s.Get(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, r.Status)
	assert.Equal(t, "interrupted by restart", r.Error)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}
