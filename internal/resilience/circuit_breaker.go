// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package resilience keeps the printer link from hammering a dead host.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/ManuGH/printerchess/internal/metrics"
)

// State is the breaker position.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half-open"
)

// ErrCircuitOpen is returned without calling the protected function.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// verdict classifies the outcome of one protected call.
type verdict int

const (
	success verdict = iota
	failure
	// neutral outcomes, such as Klipper rejecting a script, say nothing
	// about the host's health.
	neutral
)

// CircuitBreaker opens after threshold consecutive failures. Once cooldown
// has passed it admits exactly one probe; the probe's outcome closes or
// re-opens it.
type CircuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time
	isFailure func(error) bool
	onPanic   bool

	mu       sync.Mutex
	state    State
	streak   int
	openedAt time.Time
	inFlight bool
}

type Option func(*CircuitBreaker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(cb *CircuitBreaker) { cb.now = now }
}

// WithPanicRecovery counts a panic in the protected call as a failure and
// then re-panics.
func WithPanicRecovery(enabled bool) Option {
	return func(cb *CircuitBreaker) { cb.onPanic = enabled }
}

// WithFailureFilter decides which errors count against the host. Errors it
// rejects are passed through as neutral outcomes.
func WithFailureFilter(fn func(error) bool) Option {
	return func(cb *CircuitBreaker) { cb.isFailure = fn }
}

// NewCircuitBreaker creates a closed breaker labeled name in metrics.
// Non-positive arguments fall back to 3 failures and 30s.
func NewCircuitBreaker(name string, threshold int, cooldown time.Duration, opts ...Option) *CircuitBreaker {
	cb := &CircuitBreaker{
		name:      name,
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		isFailure: func(error) bool { return true },
		state:     StateClosed,
	}
	if threshold <= 0 {
		cb.threshold = 3
	}
	if cooldown <= 0 {
		cb.cooldown = 30 * time.Second
	}
	for _, opt := range opts {
		opt(cb)
	}
	metrics.SetBreakerState(name, string(StateClosed))
	return cb
}

// Execute calls fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.admit() {
		return ErrCircuitOpen
	}
	if cb.onPanic {
		defer func() {
			if r := recover(); r != nil {
				cb.settle(failure)
				panic(r)
			}
		}()
	}

	err := fn()
	switch {
	case err == nil:
		cb.settle(success)
	case cb.isFailure(err):
		cb.settle(failure)
	default:
		cb.settle(neutral)
	}
	return err
}

func (cb *CircuitBreaker) admit() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return false
		}
		cb.move(StateHalfOpen)
	case StateHalfOpen:
		if cb.inFlight {
			return false
		}
	default:
		return true
	}
	cb.inFlight = true
	return true
}

func (cb *CircuitBreaker) settle(v verdict) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.inFlight = false

	switch v {
	case success:
		cb.streak = 0
		cb.move(StateClosed)
	case failure:
		cb.streak++
		switch {
		case cb.state == StateHalfOpen:
			cb.trip("probe_failed")
		case cb.state == StateClosed && cb.streak >= cb.threshold:
			cb.trip("threshold")
		}
	}
}

// trip opens the breaker; mu must be held.
func (cb *CircuitBreaker) trip(cause string) {
	metrics.RecordBreakerTrip(cb.name, cause)
	cb.openedAt = cb.now()
	cb.move(StateOpen)
}

// move changes state; mu must be held.
func (cb *CircuitBreaker) move(to State) {
	if cb.state != to {
		cb.state = to
		metrics.SetBreakerState(cb.name, string(to))
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset closes the breaker, e.g. after the operator fixed the printer.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.streak = 0
	cb.inFlight = false
	cb.move(StateClosed)
}
