// SPDX-License-Identifier: MIT

package gcode

import (
	"fmt"

	"github.com/google/renameio/v2"
)

// WriteFile writes the program with fsync + atomic rename, so a reader never
// sees a half-written file.
func WriteFile(path string, p Program) (err error) {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending gcode file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := p.WriteTo(pending); err != nil {
		return fmt.Errorf("write gcode: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace gcode file: %w", err)
	}
	return nil
}
