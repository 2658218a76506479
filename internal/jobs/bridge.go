// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/gcode"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/metrics"
	"github.com/ManuGH/printerchess/internal/moonraker"
	"github.com/ManuGH/printerchess/internal/motion"
	"github.com/rs/zerolog"
)

// ErrPrinterBusy is returned by manual operations while a job is running.
var ErrPrinterBusy = errors.New("printer is busy with a job")

// Bridge performs manual printer operations.
type Bridge struct {
	printer Printer
	runner  *Runner
	logger  zerolog.Logger

	mu       sync.RWMutex
	renderer motion.MagnetRenderer
}

// NewBridge creates a bridge. runner may be nil when no job worker exists.
func NewBridge(printer Printer, compiler *motion.Compiler, runner *Runner) *Bridge {
	return &Bridge{
		printer:  printer,
		renderer: compiler.Magnet(),
		runner:   runner,
		logger:   xlog.WithComponent("bridge"),
	}
}

// SetCompiler picks up new layout and magnet settings.
func (b *Bridge) SetCompiler(c *motion.Compiler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renderer = c.Magnet()
}

func (b *Bridge) magnet() motion.MagnetRenderer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.renderer
}

// Status summarizes the printer and the job worker.
type Status struct {
	Printer    moonraker.PrinterInfo `json:"printer"`
	Ready      bool                  `json:"ready"`
	RunningJob string                `json:"running_job,omitempty"`
}

// Home enables the motors, selects absolute mode and homes X and Y.
func (b *Bridge) Home(ctx context.Context) error {
	return b.send(ctx, "home", gcode.MotorsOn(), gcode.G90(), gcode.Home("X", "Y"))
}

// Goto moves the head to machine coordinates in mm.
func (b *Bridge) Goto(ctx context.Context, x, y float64) error {
	return b.send(ctx, "goto", b.magnet().Goto(x, y))
}

// Magnet switches the magnet without dwelling.
func (b *Bridge) Magnet(ctx context.Context, on bool) error {
	mr := b.magnet()
	speed := mr.Off
	if on {
		speed = mr.On
	}
	return b.send(ctx, "magnet", gcode.FanSpeed(mr.Fan, speed))
}

// MovePiece carries one piece from src to dst in a straight line.
func (b *Bridge) MovePiece(ctx context.Context, src, dst board.Square) error {
	prog, err := b.magnet().RenderPiece(src, dst)
	if err != nil {
		return err
	}
	return b.send(ctx, "move", prog.Lines...)
}

// EmergencyStop halts the printer. It is never refused, and it cancels the
// running job so the worker does not keep streaming into a halted printer.
func (b *Bridge) EmergencyStop(ctx context.Context) error {
	b.logger.Warn().Str(xlog.FieldEvent, "printer.estop").Msg("emergency stop requested")
	if b.runner != nil {
		if id := b.runner.Running(); id != "" {
			_, _ = b.runner.Cancel(ctx, id)
		}
	}
	return b.printer.EmergencyStop(ctx)
}

// Status queries the printer.
func (b *Bridge) Status(ctx context.Context) (Status, error) {
	info, err := b.printer.PrinterInfo(ctx)
	if err != nil {
		metrics.SetPrinterReady(false)
		return Status{}, err
	}
	metrics.SetPrinterReady(info.Ready())
	st := Status{Printer: info, Ready: info.Ready()}
	if b.runner != nil {
		st.RunningJob = b.runner.Running()
	}
	return st, nil
}

func (b *Bridge) send(ctx context.Context, op string, cmds ...gcode.Command) error {
	if b.runner != nil && b.runner.Busy() {
		return ErrPrinterBusy
	}
	script := motion.Script(cmds...)
	logger := xlog.WithContext(ctx, b.logger)
	logger.Info().
		Str(xlog.FieldEvent, "printer."+op).
		Int(xlog.FieldCommands, len(cmds)).
		Msg("sending manual command")
	if err := b.printer.RunGCode(ctx, script); err != nil {
		return err
	}
	metrics.AddGCodeCommands(len(cmds))
	return nil
}
