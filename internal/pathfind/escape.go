// SPDX-License-Identifier: MIT

package pathfind

import "github.com/ManuGH/printerchess/internal/board"

// Outside is how far beyond the board edge the perimeter ring runs.
const Outside = 0.3

const (
	ringMin = -Outside
	ringMax = 8 + Outside
)

type edge int

const (
	edgeRight edge = iota
	edgeLeft
	edgeBottom
	edgeTop
)

// nearestEdge prefers the right edge on ties since the graveyard is there.
func nearestEdge(c board.Point) edge {
	best, dist := edgeRight, 8-c.X
	for _, cand := range []struct {
		e edge
		d float64
	}{{edgeLeft, c.X}, {edgeBottom, c.Y}, {edgeTop, 8 - c.Y}} {
		if cand.d < dist {
			best, dist = cand.e, cand.d
		}
	}
	return best
}

// Escape routes a captured piece from its square centre to a graveyard slot
// without crossing other pieces: a half-square sidestep onto the nearest
// corridor line, along that line off the board onto the outside ring, around
// the ring to the right side, up or down the right side to the slot's row and
// finally into the slot.
func Escape(centre, slot board.Point) []board.Point {
	pts := []board.Point{centre}

	switch nearestEdge(centre) {
	case edgeRight, edgeLeft:
		// travel horizontally on the line between two ranks
		laneY := centre.Y + 0.5
		if centre.Y < 4 {
			laneY = centre.Y - 0.5
		}
		pts = append(pts, board.Point{X: centre.X, Y: laneY})
		if nearestEdge(centre) == edgeRight {
			pts = append(pts, board.Point{X: ringMax, Y: laneY})
			break
		}
		cornerY := ringMin
		if laneY >= 4 {
			cornerY = ringMax
		}
		pts = append(pts,
			board.Point{X: ringMin, Y: laneY},
			board.Point{X: ringMin, Y: cornerY},
			board.Point{X: ringMax, Y: cornerY},
		)
	case edgeBottom, edgeTop:
		// travel vertically on the line between two files
		laneX := centre.X + 0.5
		if centre.X < 4 {
			laneX = centre.X - 0.5
		}
		ringY := ringMin
		if nearestEdge(centre) == edgeTop {
			ringY = ringMax
		}
		pts = append(pts,
			board.Point{X: laneX, Y: centre.Y},
			board.Point{X: laneX, Y: ringY},
			board.Point{X: ringMax, Y: ringY},
		)
	}

	pts = append(pts, board.Point{X: ringMax, Y: slot.Y}, slot)
	return pts
}
