// SPDX-License-Identifier: MIT

package pathfind

import (
	"fmt"

	"github.com/ManuGH/printerchess/internal/board"
)

// Direct is the straight line between two centres. Legal sliding moves
// have a clear line by definition.
func Direct(from, to board.Square) []board.Point {
	return []board.Point{from.Center(), to.Center()}
}

// Knight keeps a knight on the corridor lines: a half-square sidestep in the
// direction of the short leg, the two-square long leg along that line, then
// half a square into the destination centre.
func Knight(from, to board.Square) ([]board.Point, error) {
	df, dr := to.File-from.File, to.Rank-from.Rank
	c0, c1 := from.Center(), to.Center()

	switch {
	case absInt(df) == 1 && absInt(dr) == 2:
		laneX := c0.X + float64(df)*0.5
		return []board.Point{c0, {X: laneX, Y: c0.Y}, {X: laneX, Y: c1.Y}, c1}, nil
	case absInt(df) == 2 && absInt(dr) == 1:
		laneY := c0.Y + float64(dr)*0.5
		return []board.Point{c0, {X: c0.X, Y: laneY}, {X: c1.X, Y: laneY}, c1}, nil
	default:
		return nil, fmt.Errorf("%s-%s is not a knight move", from, to)
	}
}

// RookCastle moves the rook first: a half-square sidestep toward the board
// centre, a slide along that lane, then a step into place.
func RookCastle(from, to board.Square) []board.Point {
	return castleLane(from, to)
}

// KingCastle follows the rook's lane, since the rook already stands on the
// square the king passes.
func KingCastle(from, to board.Square) []board.Point {
	return castleLane(from, to)
}

func castleLane(from, to board.Square) []board.Point {
	c0, c1 := from.Center(), to.Center()
	dir := 0.5
	if from.Rank >= 4 {
		dir = -0.5
	}
	laneY := c0.Y + dir
	return []board.Point{c0, {X: c0.X, Y: laneY}, {X: c1.X, Y: laneY}, c1}
}
