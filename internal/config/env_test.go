// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		setEnv   bool
		want     int
	}{
		{"unset", "", false, 7},
		{"empty", "", true, 7},
		{"valid", "42", true, 42},
		{"padded", " 42 ", true, 42},
		{"invalid", "forty", true, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv("PCHESS_TEST_INT", tt.envValue)
			}
			assert.Equal(t, tt.want, ParseInt("PCHESS_TEST_INT", 7))
		})
	}
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"true": true, "YES": true, "1": true, "no": false, "0": false, "maybe": true} {
		t.Run(in, func(t *testing.T) {
			t.Setenv("PCHESS_TEST_BOOL", in)
			assert.Equal(t, want, ParseBool("PCHESS_TEST_BOOL", true))
		})
	}
}

func TestParseDurationAndFloat(t *testing.T) {
	t.Setenv("PCHESS_TEST_DUR", "250ms")
	t.Setenv("PCHESS_TEST_FLOAT", "0.75")
	t.Setenv("PCHESS_TEST_BAD_FLOAT", "abc")

	assert.Equal(t, 250*time.Millisecond, ParseDuration("PCHESS_TEST_DUR", time.Second))
	assert.Equal(t, 0.75, ParseFloat("PCHESS_TEST_FLOAT", 1))
	assert.Equal(t, 1.0, ParseFloat("PCHESS_TEST_BAD_FLOAT", 1))
}

func TestParseString(t *testing.T) {
	t.Setenv("PCHESS_TEST_STR", "value")
	assert.Equal(t, "value", ParseString("PCHESS_TEST_STR", "default"))
	assert.Equal(t, "default", ParseString("PCHESS_TEST_STR_UNSET", "default"))
}
