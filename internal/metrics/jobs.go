// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printerchess_jobs_total",
		Help: "Print jobs by terminal status",
	}, []string{"status"}) // status=done|failed|canceled

	jobsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "printerchess_jobs_queued",
		Help: "Jobs waiting for the printer",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "printerchess_job_duration_seconds",
		Help:    "Wall time from job start to terminal status",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	chunksSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printerchess_job_chunks_sent_total",
		Help: "Program chunks delivered by the job worker",
	})

	plansBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printerchess_plans_total",
		Help: "Games planned by render mode",
	}, []string{"mode"})

	routeFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printerchess_route_fallbacks_total",
		Help: "Plies where corridor routing found no path and a straight drag was used",
	})
)

// RecordJobFinished counts a job reaching a terminal status.
func RecordJobFinished(status string, d time.Duration) {
	jobsTotal.WithLabelValues(status).Inc()
	jobDuration.Observe(d.Seconds())
}

// SetJobsQueued sets the queue depth gauge.
func SetJobsQueued(n int) {
	jobsQueued.Set(float64(n))
}

// IncChunksSent counts one delivered chunk.
func IncChunksSent() {
	chunksSent.Inc()
}

// RecordPlan counts a planned game and its routing fallbacks.
func RecordPlan(mode string, fallbacks int) {
	plansBuilt.WithLabelValues(mode).Inc()
	if fallbacks > 0 {
		routeFallbacks.Add(float64(fallbacks))
	}
}
