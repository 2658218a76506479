// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics defines the Prometheus collectors printerchess exports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	moonrakerRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "printerchess_moonraker_requests_total",
		Help: "Moonraker API requests by operation and outcome",
	}, []string{"operation", "outcome"}) // outcome=success|retry|failure

	moonrakerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "printerchess_moonraker_request_duration_seconds",
		Help:    "Moonraker API request latency by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	gcodeCommandsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "printerchess_gcode_commands_sent_total",
		Help: "Executable G-code lines delivered to the printer",
	})

	printerReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "printerchess_printer_ready",
		Help: "Whether Klipper reported state=ready on the last probe (1) or not (0)",
	})
)

// ObserveMoonrakerRequest records one Moonraker call.
func ObserveMoonrakerRequest(operation, outcome string, d time.Duration) {
	moonrakerRequests.WithLabelValues(operation, outcome).Inc()
	moonrakerDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// AddGCodeCommands counts executable lines sent to the printer.
func AddGCodeCommands(n int) {
	gcodeCommandsSent.Add(float64(n))
}

// SetPrinterReady records the result of the last readiness probe.
func SetPrinterReady(ready bool) {
	if ready {
		printerReady.Set(1)
		return
	}
	printerReady.Set(0)
}
