// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package store persists print jobs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a job id is unknown.
var ErrNotFound = errors.New("store: job not found")

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued   Status = "queued"
	StatusRunning  Status = "running"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCanceled
}

// Source says how a job's input was written.
type Source string

const (
	SourcePGN Source = "pgn"
	SourceUCI Source = "uci"
)

// Job is one game queued for execution on the printer.
type Job struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Source      Source    `json:"source"`
	Input       string    `json:"input"`
	Mode        string    `json:"mode"`
	TotalChunks int       `json:"total_chunks"`
	SentChunks  int       `json:"sent_chunks"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store provides SQLite persistence for jobs.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the job database at path and migrates it.
// Use ":memory:" only with MaxOpenConns 1; every pooled connection would
// otherwise see its own empty database.
func Open(path string, cfg SQLiteConfig) (*Store, error) {
	db, err := openSQLite(path, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK(status IN ('queued', 'running', 'done', 'failed', 'canceled')),
		source TEXT NOT NULL CHECK(source IN ('pgn', 'uci')),
		input TEXT NOT NULL,
		mode TEXT NOT NULL,
		total_chunks INTEGER NOT NULL DEFAULT 0,
		sent_chunks INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);
	CREATE INDEX IF NOT EXISTS idx_jobs_created ON jobs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create inserts a new job. CreatedAt/UpdatedAt are filled when zero.
func (s *Store) Create(ctx context.Context, j *Job) error {
	now := s.now()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = j.CreatedAt
	if j.Status == "" {
		j.Status = StatusQueued
	}
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO jobs (id, status, source, input, mode, total_chunks, sent_chunks, error, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Status, j.Source, j.Input, j.Mode, j.TotalChunks, j.SentChunks, j.Error,
		j.CreatedAt.UnixNano(), j.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	return nil
}

const jobColumns = `id, status, source, input, mode, total_chunks, sent_chunks, error, created_at, updated_at`

// Get returns the job with the given id.
func (s *Store) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

// List returns the most recent jobs first. limit <= 0 means 100.
func (s *Store) List(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// UpdateProgress records how many chunks have been sent.
func (s *Store) UpdateProgress(ctx context.Context, id string, sent int) error {
	return s.exec(ctx, id, `UPDATE jobs SET sent_chunks = ?, updated_at = ? WHERE id = ?`,
		sent, s.now().UnixNano(), id)
}

// SetStatus moves a job to status, recording msg as its error text.
// Terminal jobs are left untouched and ErrNotFound is returned for them,
// so a late cancel cannot overwrite a finished job.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, msg string) error {
	return s.exec(ctx, id, `
	UPDATE jobs SET status = ?, error = ?, updated_at = ?
	WHERE id = ? AND status NOT IN ('done', 'failed', 'canceled')`,
		status, msg, s.now().UnixNano(), id)
}

// CancelQueued cancels a job that has not started. It returns ErrNotFound
// when the job is missing or already left the queued state.
func (s *Store) CancelQueued(ctx context.Context, id string) error {
	return s.exec(ctx, id, `
	UPDATE jobs SET status = 'canceled', error = '', updated_at = ?
	WHERE id = ? AND status = 'queued'`,
		s.now().UnixNano(), id)
}

// RecoverInterrupted marks jobs left running by a previous process as
// failed and returns the ids of jobs still queued, oldest first.
func (s *Store) RecoverInterrupted(ctx context.Context) ([]string, error) {
	if _, err := s.db.ExecContext(ctx, `
	UPDATE jobs SET status = 'failed', error = 'interrupted by restart', updated_at = ?
	WHERE status = 'running'`, s.now().UnixNano()); err != nil {
		return nil, fmt.Errorf("fail interrupted jobs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM jobs WHERE status = 'queued' ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) exec(ctx context.Context, id, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(sc scanner) (Job, error) {
	var j Job
	var created, updated int64
	if err := sc.Scan(&j.ID, &j.Status, &j.Source, &j.Input, &j.Mode,
		&j.TotalChunks, &j.SentChunks, &j.Error, &created, &updated); err != nil {
		return Job{}, err
	}
	j.CreatedAt = time.Unix(0, created).UTC()
	j.UpdatedAt = time.Unix(0, updated).UTC()
	return j, nil
}
