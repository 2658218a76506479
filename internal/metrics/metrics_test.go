// SPDX-License-Identifier: MIT

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSetBreakerState_OneHot(t *testing.T) {
	SetBreakerState("moonraker", "open")

	assert.Equal(t, 1.0, testutil.ToFloat64(breakerState.WithLabelValues("moonraker", "open")))
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("moonraker", "closed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(breakerState.WithLabelValues("moonraker", "half-open")))

	before := testutil.ToFloat64(breakerTrips.WithLabelValues("moonraker", "threshold"))
	RecordBreakerTrip("moonraker", "threshold")
	assert.Equal(t, before+1, testutil.ToFloat64(breakerTrips.WithLabelValues("moonraker", "threshold")))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(gcodeCommandsSent)
	AddGCodeCommands(7)
	assert.Equal(t, before+7, testutil.ToFloat64(gcodeCommandsSent))

	beforeFallbacks := testutil.ToFloat64(routeFallbacks)
	RecordPlan("magnet", 2)
	RecordPlan("legacy", 0)
	assert.Equal(t, beforeFallbacks+2, testutil.ToFloat64(routeFallbacks))

	beforeDone := testutil.ToFloat64(jobsTotal.WithLabelValues("done"))
	RecordJobFinished("done", 3*time.Second)
	assert.Equal(t, beforeDone+1, testutil.ToFloat64(jobsTotal.WithLabelValues("done")))

	SetPrinterReady(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(printerReady))
	SetPrinterReady(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(printerReady))

	ObserveHTTP("/api/v1/jobs", "GET", 200, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/jobs", "GET", "200")))
}
