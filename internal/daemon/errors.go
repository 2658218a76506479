// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package daemon

import "errors"

// Wiring errors, returned before anything is started.
var (
	ErrMissingLogger     = errors.New("daemon: logger is required")
	ErrMissingAPIHandler = errors.New("daemon: API handler is required")
	ErrMissingManager    = errors.New("daemon: app has no manager")
)

// Lifecycle errors.
var (
	ErrManagerNotStarted = errors.New("daemon: manager not started")
	ErrManagerStarted    = errors.New("daemon: manager already started")
)
