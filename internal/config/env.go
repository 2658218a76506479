// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/printerchess/internal/log"
)

// EnvPrefix prefixes every environment variable read by the loader.
const EnvPrefix = "PCHESS_"

// fromEnv returns parse(value of key), or def when the variable is unset,
// empty or malformed. Malformed values are logged and otherwise ignored so a
// typo never keeps the daemon from starting.
func fromEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return def
	}
	logger := log.WithComponent("config")
	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", raw).
			Interface("default", def).
			Msg("ignoring malformed environment variable")
		return def
	}
	logger.Debug().Str("key", key).Str("source", "environment").Msg("override from environment")
	return v
}

// ParseString reads key, keeping surrounding whitespace trimmed.
func ParseString(key, def string) string {
	return fromEnv(key, def, func(s string) (string, error) { return s, nil })
}

func ParseInt(key string, def int) int {
	return fromEnv(key, def, strconv.Atoi)
}

// ParseDuration accepts Go duration syntax such as "250ms" or "5s".
func ParseDuration(key string, def time.Duration) time.Duration {
	return fromEnv(key, def, time.ParseDuration)
}

func ParseFloat(key string, def float64) float64 {
	return fromEnv(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, def bool) bool {
	return fromEnv(key, def, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}
