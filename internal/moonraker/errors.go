// SPDX-License-Identifier: MIT

package moonraker

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrNotFound            = errors.New("moonraker: resource not found")
	ErrUnauthorized        = errors.New("moonraker: unauthorized (check API key)")
	ErrUpstreamUnavailable = errors.New("moonraker: host unreachable or transport failure")
	ErrUpstreamError       = errors.New("moonraker: upstream error")
	ErrBadResponse         = errors.New("moonraker: invalid response format or malformed data")
	ErrTimeout             = errors.New("moonraker: request timed out")
	ErrGCodeRejected       = errors.New("moonraker: gcode rejected by klipper")
)

// Error is a rich error type that wraps the sentinel errors with context.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // lower-level cause, e.g. a net.Error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v (%s)", e.Sentinel, e.Operation)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Sentinel
}

// Retryable reports whether repeating the request may succeed.
func (e *Error) Retryable() bool {
	switch {
	case errors.Is(e.Sentinel, ErrUpstreamUnavailable), errors.Is(e.Sentinel, ErrTimeout):
		return true
	case errors.Is(e.Sentinel, ErrUpstreamError):
		return e.Status >= 500
	default:
		return false
	}
}

// hostFault reports whether err says something about the health of the
// printer host, as opposed to the request itself. Only host faults trip
// the circuit breaker.
func hostFault(err error) bool {
	var me *Error
	if !errors.As(err, &me) {
		return false
	}
	return me.Retryable() || errors.Is(me.Sentinel, ErrBadResponse)
}
