// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestConfigValidate(t *testing.T) {
	good := writeConfig(t, "motion:\n  mode: magnet\n")
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, runConfigCLI([]string{"validate", "-f", good}, &out, &errOut))
	assert.Contains(t, out.String(), "is valid")

	bad := writeConfig(t, "motion:\n  feed: -1\n")
	out.Reset()
	errOut.Reset()
	assert.Equal(t, 1, runConfigCLI([]string{"validate", "--file", bad}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Motion.Feed")
}

func TestConfigDump_MasksSecrets(t *testing.T) {
	path := writeConfig(t, "moonraker:\n  url: http://printer.local:7125\n  apiKey: hunter2\n")

	var out, errOut bytes.Buffer
	require.Equal(t, 0, runConfigCLI([]string{"dump", "-f", path}, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), "printer.local")
	assert.NotContains(t, out.String(), "hunter2")

	out.Reset()
	require.Equal(t, 0, runConfigCLI([]string{"dump", "-f", path, "--format=json"}, &out, &errOut), errOut.String())
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.NotContains(t, out.String(), "hunter2")
}

func TestConfigCLI_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 0, runConfigCLI(nil, &out, &errOut))
	assert.Contains(t, errOut.String(), "Usage:")

	errOut.Reset()
	assert.Equal(t, 2, runConfigCLI([]string{"explode"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Unknown subcommand")

	errOut.Reset()
	assert.Equal(t, 2, runConfigCLI([]string{"dump", "--format=toml"}, &out, &errOut))
	assert.Contains(t, errOut.String(), "Unsupported format")
}
