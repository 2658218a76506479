// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config describes the process-wide logger.
type Config struct {
	// Level is a zerolog level name; unknown or empty means info.
	Level   string
	Output  io.Writer
	Service string
	Version string
	// Console switches to zerolog's human readable writer. The CLI uses it
	// on a terminal; the daemon always logs JSON.
	Console bool
}

var root atomic.Pointer[zerolog.Logger]

// Configure replaces the process logger. It may be called again once the
// configuration file is loaded.
func Configure(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Console {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	service := cfg.Service
	if service == "" {
		service = "printerchess"
	}
	zc := zerolog.New(out).With().Timestamp().Str("service", service)
	if cfg.Version != "" {
		zc = zc.Str("version", cfg.Version)
	}
	l := zc.Logger()
	root.Store(&l)
}

func current() zerolog.Logger {
	if l := root.Load(); l != nil {
		return *l
	}
	Configure(Config{})
	return *root.Load()
}

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return current().With().Str(FieldComponent, component).Logger()
}
