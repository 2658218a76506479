// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "time"

// AppConfig is the fully merged runtime configuration.
type AppConfig struct {
	Version   string          `yaml:"-"`
	DataDir   string          `yaml:"dataDir"`
	Log       LogConfig       `yaml:"log"`
	API       APIConfig       `yaml:"api"`
	Moonraker MoonrakerConfig `yaml:"moonraker"`
	Board     BoardConfig     `yaml:"board"`
	Motion    MotionConfig    `yaml:"motion"`
	Graveyard GraveyardConfig `yaml:"graveyard"`
	Jobs      JobsConfig      `yaml:"jobs"`
}

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// APIConfig controls the HTTP surface.
type APIConfig struct {
	ListenAddr      string        `yaml:"listenAddr"`
	RateLimit       int           `yaml:"rateLimit"` // requests per minute per client IP, 0 disables
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// MoonrakerConfig describes the printer endpoint.
type MoonrakerConfig struct {
	URL              string        `yaml:"url"`
	APIKey           string        `yaml:"apiKey"`
	Timeout          time.Duration `yaml:"timeout"`
	Retries          int           `yaml:"retries"`
	RetryBackoff     time.Duration `yaml:"retryBackoff"`
	BreakerThreshold int           `yaml:"breakerThreshold"`
	BreakerCooldown  time.Duration `yaml:"breakerCooldown"`
}

// BoardConfig selects how board squares map to machine millimetres.
type BoardConfig struct {
	Layout string  `yaml:"layout"` // legacy | workarea
	Size   float64 `yaml:"size"`   // legacy layout: board size in mm
	XMin   float64 `yaml:"xMin"`
	YMin   float64 `yaml:"yMin"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// MotionConfig controls planning and the magnet renderer.
type MotionConfig struct {
	Mode        string  `yaml:"mode"`    // legacy | magnet
	Routing     string  `yaml:"routing"` // direct | corridor
	Feed        int     `yaml:"feed"`    // mm/min
	DwellPickMS int     `yaml:"dwellPickMs"`
	DwellDropMS int     `yaml:"dwellDropMs"`
	MagnetFan   string  `yaml:"magnetFan"`
	MagnetOn    float64 `yaml:"magnetOn"`
	MagnetOff   float64 `yaml:"magnetOff"`
}

// GraveyardConfig places captured pieces outside the right board edge.
// All values are in board units (one square = 1.0).
type GraveyardConfig struct {
	Gap     float64 `yaml:"gap"`
	Spacing float64 `yaml:"spacing"`
	Rows    int     `yaml:"rows"`
	Columns int     `yaml:"columns"`
}

// JobsConfig controls the print worker.
type JobsConfig struct {
	ChunksPerSecond float64 `yaml:"chunksPerSecond"` // 0 disables pacing
	Burst           int     `yaml:"burst"`
	QueueSize       int     `yaml:"queueSize"`
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		DataDir: "data",
		Log:     LogConfig{Level: "info"},
		API: APIConfig{
			ListenAddr:      ":8088",
			RateLimit:       120,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Moonraker: MoonrakerConfig{
			URL:              "http://127.0.0.1:7125",
			Timeout:          15 * time.Second,
			Retries:          2,
			RetryBackoff:     400 * time.Millisecond,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Board: BoardConfig{
			Layout: "legacy",
			Size:   350,
			XMin:   10,
			YMin:   10,
			Width:  320,
			Height: 320,
		},
		Motion: MotionConfig{
			Mode:        "legacy",
			Routing:     "direct",
			Feed:        4200,
			DwellPickMS: 120,
			DwellDropMS: 100,
			MagnetFan:   "magnet",
			MagnetOn:    1.0,
			MagnetOff:   0.0,
		},
		Graveyard: GraveyardConfig{
			Gap:     0.6,
			Spacing: 0.9,
			Rows:    8,
			Columns: 4,
		},
		Jobs: JobsConfig{
			ChunksPerSecond: 2,
			Burst:           1,
			QueueSize:       16,
		},
	}
}
