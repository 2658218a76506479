// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/ManuGH/printerchess/internal/api/problem"
)

// RateLimit allows limit requests per window and client IP using httprate's
// sliding window. Rejections are problem documents with Retry-After.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", retryAfter)
			problem.Write(w, r, http.StatusTooManyRequests, "rate-limited", "Too many requests",
				"request budget for this client is exhausted, retry later")
		}),
	)
}

// APIRateLimit is RateLimit with a one minute window.
func APIRateLimit(perMinute int) func(http.Handler) http.Handler {
	return RateLimit(perMinute, time.Minute)
}

// MaxBody caps request bodies at n bytes; handlers see a read error past it.
// n <= 0 disables the cap.
func MaxBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if n <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, n)
			}
			next.ServeHTTP(w, r)
		})
	}
}
