// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader. An empty configPath means
// defaults plus environment only.
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// ConfigPath returns the file this loader reads, if any.
func (l *Loader) ConfigPath() string { return l.configPath }

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults,
// then validates the merged result.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()
	cfg.Version = l.version

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if cfg.DataDir != "" {
		if abs, err := filepath.Abs(cfg.DataDir); err == nil {
			cfg.DataDir = abs
		}
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes the YAML file on top of cfg. Keys absent from the file keep
// their current values.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	return decodeStrict(data, cfg)
}

func decodeStrict(data []byte, cfg *AppConfig) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.DataDir = l.envString(EnvPrefix+"DATA_DIR", cfg.DataDir)
	cfg.Log.Level = l.envString(EnvPrefix+"LOG_LEVEL", cfg.Log.Level)

	cfg.API.ListenAddr = l.envString(EnvPrefix+"LISTEN", cfg.API.ListenAddr)
	cfg.API.RateLimit = l.envInt(EnvPrefix+"RATE_LIMIT", cfg.API.RateLimit)
	cfg.API.MaxBodyBytes = int64(l.envInt(EnvPrefix+"MAX_BODY_BYTES", int(cfg.API.MaxBodyBytes)))
	cfg.API.ShutdownTimeout = l.envDuration(EnvPrefix+"SHUTDOWN_TIMEOUT", cfg.API.ShutdownTimeout)

	cfg.Moonraker.URL = l.envString(EnvPrefix+"MOONRAKER_URL", cfg.Moonraker.URL)
	cfg.Moonraker.APIKey = l.envString(EnvPrefix+"MOONRAKER_API_KEY", cfg.Moonraker.APIKey)
	cfg.Moonraker.Timeout = l.envDuration(EnvPrefix+"MOONRAKER_TIMEOUT", cfg.Moonraker.Timeout)
	cfg.Moonraker.Retries = l.envInt(EnvPrefix+"MOONRAKER_RETRIES", cfg.Moonraker.Retries)
	cfg.Moonraker.RetryBackoff = l.envDuration(EnvPrefix+"MOONRAKER_RETRY_BACKOFF", cfg.Moonraker.RetryBackoff)
	cfg.Moonraker.BreakerThreshold = l.envInt(EnvPrefix+"MOONRAKER_BREAKER_THRESHOLD", cfg.Moonraker.BreakerThreshold)
	cfg.Moonraker.BreakerCooldown = l.envDuration(EnvPrefix+"MOONRAKER_BREAKER_COOLDOWN", cfg.Moonraker.BreakerCooldown)

	cfg.Board.Layout = l.envString(EnvPrefix+"BOARD_LAYOUT", cfg.Board.Layout)
	cfg.Board.Size = l.envFloat(EnvPrefix+"BOARD_SIZE", cfg.Board.Size)
	cfg.Board.XMin = l.envFloat(EnvPrefix+"WORK_XMIN", cfg.Board.XMin)
	cfg.Board.YMin = l.envFloat(EnvPrefix+"WORK_YMIN", cfg.Board.YMin)
	cfg.Board.Width = l.envFloat(EnvPrefix+"WORK_WIDTH", cfg.Board.Width)
	cfg.Board.Height = l.envFloat(EnvPrefix+"WORK_HEIGHT", cfg.Board.Height)

	cfg.Motion.Mode = l.envString(EnvPrefix+"MODE", cfg.Motion.Mode)
	cfg.Motion.Routing = l.envString(EnvPrefix+"ROUTING", cfg.Motion.Routing)
	cfg.Motion.Feed = l.envInt(EnvPrefix+"FEED", cfg.Motion.Feed)
	cfg.Motion.DwellPickMS = l.envInt(EnvPrefix+"DWELL_PICK_MS", cfg.Motion.DwellPickMS)
	cfg.Motion.DwellDropMS = l.envInt(EnvPrefix+"DWELL_DROP_MS", cfg.Motion.DwellDropMS)
	cfg.Motion.MagnetFan = l.envString(EnvPrefix+"MAGNET_FAN", cfg.Motion.MagnetFan)
	cfg.Motion.MagnetOn = l.envFloat(EnvPrefix+"MAGNET_ON", cfg.Motion.MagnetOn)
	cfg.Motion.MagnetOff = l.envFloat(EnvPrefix+"MAGNET_OFF", cfg.Motion.MagnetOff)

	cfg.Graveyard.Gap = l.envFloat(EnvPrefix+"GRAVEYARD_GAP", cfg.Graveyard.Gap)
	cfg.Graveyard.Spacing = l.envFloat(EnvPrefix+"GRAVEYARD_SPACING", cfg.Graveyard.Spacing)
	cfg.Graveyard.Rows = l.envInt(EnvPrefix+"GRAVEYARD_ROWS", cfg.Graveyard.Rows)
	cfg.Graveyard.Columns = l.envInt(EnvPrefix+"GRAVEYARD_COLUMNS", cfg.Graveyard.Columns)

	cfg.Jobs.ChunksPerSecond = l.envFloat(EnvPrefix+"JOBS_RATE", cfg.Jobs.ChunksPerSecond)
	cfg.Jobs.Burst = l.envInt(EnvPrefix+"JOBS_BURST", cfg.Jobs.Burst)
	cfg.Jobs.QueueSize = l.envInt(EnvPrefix+"JOBS_QUEUE_SIZE", cfg.Jobs.QueueSize)
}

// UnknownEnvKeys returns PCHESS_* variables present in the environment that
// the last Load did not consume. Typos show up here.
func (l *Loader) UnknownEnvKeys() []string {
	var unknown []string
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		if _, ok := l.ConsumedEnvKeys[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// Redacted returns a copy safe for display.
func (c AppConfig) Redacted() AppConfig {
	out := c
	if out.Moonraker.APIKey != "" {
		out.Moonraker.APIKey = "***"
	}
	return out
}

// MarshalYAML renders the effective configuration, with secrets masked.
func MarshalYAML(cfg AppConfig) ([]byte, error) {
	return yaml.Marshal(cfg.Redacted())
}
