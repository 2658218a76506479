// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/printerchess/internal/moonraker"
)

// PrinterInfoer is the part of the Moonraker client the printer check uses.
type PrinterInfoer interface {
	PrinterInfo(ctx context.Context) (moonraker.PrinterInfo, error)
}

// PrinterChecker asks Klipper for its state. An unreachable or not-ready
// printer only degrades the daemon: plans and G-code are still served.
type PrinterChecker struct {
	client  PrinterInfoer
	timeout time.Duration
}

// NewPrinterChecker creates a checker bounded by timeout.
func NewPrinterChecker(client PrinterInfoer, timeout time.Duration) *PrinterChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &PrinterChecker{client: client, timeout: timeout}
}

func (c *PrinterChecker) Name() string { return "printer" }

func (c *PrinterChecker) Check(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	info, err := c.client.PrinterInfo(ctx)
	if err != nil {
		return CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "moonraker unreachable"}
	}
	if !info.Ready() {
		return CheckResult{Status: StatusDegraded, Message: fmt.Sprintf("klipper %s: %s", info.State, info.StateMessage)}
	}
	return CheckResult{Status: StatusHealthy, Message: "klipper ready"}
}

// Pinger is anything that can prove it is reachable, e.g. the job store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker fails readiness when the job database is gone.
type StoreChecker struct {
	store Pinger
}

// NewStoreChecker creates a store checker.
func NewStoreChecker(store Pinger) *StoreChecker {
	return &StoreChecker{store: store}
}

func (c *StoreChecker) Name() string { return "store" }

func (c *StoreChecker) Check(ctx context.Context) CheckResult {
	if err := c.store.Ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy, Message: "job store reachable"}
}

// DirChecker checks the data directory is still writable.
type DirChecker struct {
	name string
	path string
}

// NewDirChecker creates a checker for a writable directory.
func NewDirChecker(name, path string) *DirChecker {
	return &DirChecker{name: name, path: path}
}

func (c *DirChecker) Name() string { return c.name }

func (c *DirChecker) Check(context.Context) CheckResult {
	if err := checkWritable(c.path); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: c.path}
	}
	return CheckResult{Status: StatusHealthy, Message: "writable"}
}

func checkWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}
	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)
	return nil
}
