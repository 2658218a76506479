// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"os"

	"github.com/ManuGH/printerchess/internal/config"
	"github.com/ManuGH/printerchess/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the environment before the server starts.
// The printer is only probed: an offline printer is logged, not fatal.
func PerformStartupChecks(ctx context.Context, cfg config.AppConfig, printer PrinterInfoer) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Str("event", "startup.checks").Msg("running pre-flight startup checks")

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := checkWritable(cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}
	logger.Info().Str("path", cfg.DataDir).Msg("data directory is writable")

	if printer != nil {
		probePrinter(ctx, logger, printer)
	}
	return nil
}

func probePrinter(ctx context.Context, logger zerolog.Logger, printer PrinterInfoer) {
	res := NewPrinterChecker(printer, 0).Check(ctx)
	if res.Status != StatusHealthy {
		logger.Warn().
			Str("event", "startup.printer_unavailable").
			Str("error", res.Error).
			Str("detail", res.Message).
			Msg("printer not ready; jobs will fail until it is")
		return
	}
	logger.Info().Str("event", "startup.printer_ready").Msg(res.Message)
}
