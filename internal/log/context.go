// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package log holds the zerolog setup shared by the daemon and the CLI, plus
// the request and job correlation carried through contexts.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type correlationKey int

const (
	requestKey correlationKey = iota
	jobKey
)

func with(ctx context.Context, key correlationKey, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, id)
}

func lookup(ctx context.Context, key correlationKey) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key).(string)
	return id
}

// ContextWithRequestID tags ctx with the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return with(ctx, requestKey, id)
}

// ContextWithJobID tags ctx with the job being executed.
func ContextWithJobID(ctx context.Context, id string) context.Context {
	return with(ctx, jobKey, id)
}

func RequestIDFromContext(ctx context.Context) string { return lookup(ctx, requestKey) }

func JobIDFromContext(ctx context.Context) string { return lookup(ctx, jobKey) }

// WithContext adds the request and job IDs found in ctx to logger. The logger
// is returned unchanged when ctx carries neither.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rid, jid := RequestIDFromContext(ctx), JobIDFromContext(ctx)
	if rid == "" && jid == "" {
		return logger
	}
	zc := logger.With()
	if rid != "" {
		zc = zc.Str(FieldRequestID, rid)
	}
	if jid != "" {
		zc = zc.Str(FieldJobID, jid)
	}
	return zc.Logger()
}

// WithComponentFromContext is WithComponent plus the correlation IDs in ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
