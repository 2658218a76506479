// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the printerchess REST API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/printerchess/internal/api/middleware"
	"github.com/ManuGH/printerchess/internal/config"
	"github.com/ManuGH/printerchess/internal/health"
	"github.com/ManuGH/printerchess/internal/jobs"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/store"
)

// Deps are the collaborators the API needs.
type Deps struct {
	Runner *jobs.Runner
	Bridge *jobs.Bridge
	Store  *store.Store
	Health *health.Manager
}

// Server routes HTTP requests to the job runner and printer bridge.
type Server struct {
	cfg    config.APIConfig
	runner *jobs.Runner
	bridge *jobs.Bridge
	store  *store.Store
	health *health.Manager
	logger zerolog.Logger
}

// New creates the API server.
func New(cfg config.APIConfig, deps Deps) *Server {
	return &Server{
		cfg:    cfg,
		runner: deps.Runner,
		bridge: deps.Bridge,
		store:  deps.Store,
		health: deps.Health,
		logger: xlog.WithComponent("api"),
	}
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		SecurityHeaders: true,
		Metrics:         true,
		AccessLog:       true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(middleware.APIRateLimit(s.cfg.RateLimit))
		}
		if s.cfg.MaxBodyBytes > 0 {
			r.Use(middleware.MaxBody(s.cfg.MaxBodyBytes))
		}

		r.Post("/gcode", s.handleGCode)
		r.Post("/plans", s.handlePlans)
		r.Post("/validate", s.handleValidate)

		r.Route("/jobs", func(r chi.Router) {
			r.Post("/", s.handleSubmitJob)
			r.Get("/", s.handleListJobs)
			r.Get("/{id}", s.handleGetJob)
			r.Post("/{id}/cancel", s.handleCancelJob)
		})

		r.Route("/printer", func(r chi.Router) {
			r.Get("/status", s.handlePrinterStatus)
			r.Post("/home", s.handleHome)
			r.Post("/goto", s.handleGoto)
			r.Post("/magnet", s.handleMagnet)
			r.Post("/move", s.handleMove)
			r.Post("/estop", s.handleEmergencyStop)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, "not-found", "Not found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusMethodNotAllowed, "", "", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}
