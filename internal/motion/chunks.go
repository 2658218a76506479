// SPDX-License-Identifier: MIT

package motion

import (
	"strings"

	"github.com/ManuGH/printerchess/internal/gcode"
)

// PlyMarker starts the comment the magnet renderer puts before every ply.
const PlyMarker = "ply "

const legacyPlyEnd = "Move to "

// Chunks splits a program into scripts small enough to send one at a time,
// roughly one per ply. Boundaries come from the magnet renderer's ply
// comments (the header is its own chunk, the trailer rides with the last
// ply) and from the legacy program's "Move to" comments (the setup block
// rides with the first ply, the shutdown block is its own chunk). A program
// with neither marker is a single chunk.
func Chunks(p gcode.Program) []string {
	var (
		out []string
		cur []gcode.Command
	)
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, gcode.Program{Lines: cur}.String())
		cur = nil
	}

	for _, c := range p.Lines {
		if c.IsComment() && strings.HasPrefix(c.Comment, PlyMarker) {
			flush()
		}
		cur = append(cur, c)
		if c.IsComment() && strings.HasPrefix(c.Comment, legacyPlyEnd) {
			flush()
		}
	}
	flush()
	return out
}

// Script joins commands into one newline-terminated script.
func Script(cmds ...gcode.Command) string {
	return gcode.Program{Lines: cmds}.String()
}
