// SPDX-License-Identifier: MIT

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BreakerStates are the label values of printerchess_breaker_state.
var BreakerStates = [...]string{"closed", "half-open", "open"}

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "printerchess_breaker_state",
		Help: "1 for the current state of each circuit breaker, 0 for the others",
	}, []string{"breaker", "state"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printerchess_breaker_trips_total",
		Help: "Times a circuit breaker opened, by cause",
	}, []string{"breaker", "cause"})
)

// SetBreakerState marks state as current for breaker and clears the others.
func SetBreakerState(breaker, state string) {
	for _, s := range BreakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		breakerState.WithLabelValues(breaker, s).Set(v)
	}
}

// RecordBreakerTrip counts one transition to open.
func RecordBreakerTrip(breaker, cause string) {
	breakerTrips.WithLabelValues(breaker, cause).Inc()
}
