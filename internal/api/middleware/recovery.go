// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/ManuGH/printerchess/internal/api/problem"
	"github.com/ManuGH/printerchess/internal/log"
)

// Recoverer turns a handler panic into a logged 500 problem. http.ErrAbortHandler
// is re-raised so net/http can abort the connection.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(v)
			}
			logger := log.WithComponentFromContext(r.Context(), "http")
			logger.Error().
				Str(log.FieldEvent, "panic.recovered").
				Str("method", r.Method).
				Str(log.FieldPath, strings.ToValidUTF8(r.URL.Path, "")).
				Interface("panic", v).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			problem.Write(w, r, http.StatusInternalServerError, "internal", "Internal server error",
				"the request could not be completed")
		}()
		next.ServeHTTP(w, r)
	})
}
