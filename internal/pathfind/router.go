// SPDX-License-Identifier: MIT

package pathfind

import (
	"errors"
	"fmt"

	"github.com/ManuGH/printerchess/internal/board"
)

// Mode selects how non-knight moves are routed.
type Mode string

const (
	// ModeDirect drags pieces in a straight line between centres.
	ModeDirect Mode = "direct"
	// ModeCorridor routes pieces around occupied squares.
	ModeCorridor Mode = "corridor"
)

// ParseMode validates a routing mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDirect, ModeCorridor:
		return Mode(s), nil
	case "":
		return ModeDirect, nil
	default:
		return "", fmt.Errorf("unknown routing mode %q", s)
	}
}

// Router picks a route per piece.
type Router struct {
	Mode Mode
}

// Route plans a drag from one centre to another. Knights always take the
// lane route. In corridor mode a walled-off destination falls back to the
// straight line; the returned bool reports that fallback.
func (r Router) Route(from, to board.Square, knight bool, occ board.Occupancy) ([]board.Point, bool, error) {
	if knight {
		pts, err := Knight(from, to)
		return pts, false, err
	}
	if r.Mode != ModeCorridor {
		return Direct(from, to), false, nil
	}
	pts, err := Corridor(from, to, occ)
	if errors.Is(err, ErrNoPath) {
		return Direct(from, to), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return pts, false, nil
}
