// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads the printerchess configuration.
//
// Precedence is ENV > file > defaults. The YAML file is decoded strictly
// (unknown keys are rejected), every PCHESS_* variable the loader reads is
// recorded in Loader.ConsumedEnvKeys, and the merged result is checked by
// Validate before it is handed to the daemon. ConfigHolder keeps the active
// configuration and swaps it atomically when the file changes.
package config
