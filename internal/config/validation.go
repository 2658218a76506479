// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"github.com/ManuGH/printerchess/internal/validate"
)

var (
	layouts  = []string{"legacy", "workarea"}
	modes    = []string{"legacy", "magnet"}
	routings = []string{"direct", "corridor"}
)

// Validate checks the merged configuration and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.NotEmpty("DataDir", cfg.DataDir)
	v.LogLevel("Log.Level", cfg.Log.Level)

	api := cfg.API
	v.ListenAddr("API.ListenAddr", api.ListenAddr)
	validate.NonNegative(v, "API.RateLimit", api.RateLimit)
	validate.Positive(v, "API.MaxBodyBytes", api.MaxBodyBytes)
	validate.Positive(v, "API.ShutdownTimeout", api.ShutdownTimeout)

	mr := cfg.Moonraker
	v.URL("Moonraker.URL", mr.URL, "http", "https")
	validate.Positive(v, "Moonraker.Timeout", mr.Timeout)
	validate.Between(v, "Moonraker.Retries", mr.Retries, 0, 10)
	validate.NonNegative(v, "Moonraker.RetryBackoff", mr.RetryBackoff)
	validate.Positive(v, "Moonraker.BreakerThreshold", mr.BreakerThreshold)
	validate.Positive(v, "Moonraker.BreakerCooldown", mr.BreakerCooldown)

	b := cfg.Board
	v.OneOf("Board.Layout", b.Layout, layouts...)
	switch b.Layout {
	case "legacy":
		validate.Positive(v, "Board.Size", b.Size)
	case "workarea":
		validate.Between(v, "Board.XMin", b.XMin, 0, 10000)
		validate.Between(v, "Board.YMin", b.YMin, 0, 10000)
		validate.Positive(v, "Board.Width", b.Width)
		validate.Positive(v, "Board.Height", b.Height)
	}

	m := cfg.Motion
	v.OneOf("Motion.Mode", m.Mode, modes...)
	v.OneOf("Motion.Routing", m.Routing, routings...)
	validate.Positive(v, "Motion.Feed", m.Feed)
	validate.NonNegative(v, "Motion.DwellPickMS", m.DwellPickMS)
	validate.NonNegative(v, "Motion.DwellDropMS", m.DwellDropMS)
	v.NotEmpty("Motion.MagnetFan", m.MagnetFan)
	validate.Between(v, "Motion.MagnetOn", m.MagnetOn, 0, 1)
	validate.Between(v, "Motion.MagnetOff", m.MagnetOff, 0, 1)
	v.Check(m.MagnetOn != m.MagnetOff, "Motion.MagnetOn", m.MagnetOn, "must differ from Motion.MagnetOff")

	// Gap and spacing are in squares; less than half a square and pieces collide.
	g := cfg.Graveyard
	validate.Between(v, "Graveyard.Gap", g.Gap, 0.5, 4)
	validate.Between(v, "Graveyard.Spacing", g.Spacing, 0.5, 2)
	validate.Between(v, "Graveyard.Rows", g.Rows, 1, 16)
	validate.Between(v, "Graveyard.Columns", g.Columns, 1, 8)
	v.Check(g.Rows*g.Columns >= 30, "Graveyard", g.Rows*g.Columns, "needs at least 30 slots (every capturable piece)")

	j := cfg.Jobs
	validate.Between(v, "Jobs.ChunksPerSecond", j.ChunksPerSecond, 0, 1000)
	validate.Positive(v, "Jobs.Burst", j.Burst)
	validate.Positive(v, "Jobs.QueueSize", j.QueueSize)

	return v.Err()
}
