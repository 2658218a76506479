// SPDX-License-Identifier: MIT

// Package middleware holds the HTTP ingress chain shared by every route.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	xlog "github.com/ManuGH/printerchess/internal/log"
)

// StackConfig selects the optional layers of the ingress chain.
type StackConfig struct {
	SecurityHeaders bool
	CSP             string
	Metrics         bool
	AccessLog       bool

	// RateLimitPerMinute is the per-IP budget; 0 disables limiting.
	RateLimitPerMinute int
	// MaxBodyBytes caps request bodies; 0 disables the cap.
	MaxBodyBytes int64
}

// NewRouter returns a chi router with the chain applied. Panic recovery and
// request ids are always on and sit outermost, so even a rejected request
// gets a correlatable problem document.
func NewRouter(cfg StackConfig) *chi.Mux {
	chain := []func(http.Handler) http.Handler{Recoverer, RequestID}
	if cfg.SecurityHeaders {
		chain = append(chain, SecurityHeaders(cfg.CSP))
	}
	if cfg.Metrics {
		chain = append(chain, Metrics)
	}
	if cfg.AccessLog {
		chain = append(chain, xlog.Middleware())
	}
	if cfg.RateLimitPerMinute > 0 {
		chain = append(chain, APIRateLimit(cfg.RateLimitPerMinute))
	}
	if cfg.MaxBodyBytes > 0 {
		chain = append(chain, MaxBody(cfg.MaxBodyBytes))
	}

	r := chi.NewRouter()
	r.Use(chain...)
	return r
}
