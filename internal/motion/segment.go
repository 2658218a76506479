// SPDX-License-Identifier: MIT

// Package motion turns chess plies into magnet motion plans and renders
// those plans as G-code programs.
package motion

import (
	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/chessgame"
)

// Kind classifies a segment of a plan.
type Kind string

const (
	KindTravel  Kind = "travel"  // magnet off, nothing attached
	KindGrab    Kind = "grab"    // magnet on at the current position
	KindDrag    Kind = "drag"    // magnet on, piece follows
	KindRelease Kind = "release" // magnet off at the current position
	KindNote    Kind = "note"    // operator hint, no motion
)

// Segment is one step of a plan.
type Segment struct {
	Kind      Kind          `json:"kind"`
	Waypoints []board.Point `json:"waypoints,omitempty"`
	Magnet    bool          `json:"magnet"`
	Note      string        `json:"note,omitempty"`
}

// Plan is everything the magnet does for one ply.
type Plan struct {
	Ply      chessgame.Ply `json:"ply"`
	Segments []Segment     `json:"segments"`
	// FellBack is set when corridor routing found no path and a straight drag was used.
	FellBack bool `json:"fellBack,omitempty"`
}

// End returns the last waypoint of the plan.
func (p Plan) End() (board.Point, bool) {
	for i := len(p.Segments) - 1; i >= 0; i-- {
		if w := p.Segments[i].Waypoints; len(w) > 0 {
			return w[len(w)-1], true
		}
	}
	return board.Point{}, false
}

// InMM returns a copy of the plan with every waypoint mapped through l.
func (p Plan) InMM(l board.Layout) Plan {
	out := p
	out.Segments = make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		s2 := s
		if len(s.Waypoints) > 0 {
			s2.Waypoints = make([]board.Point, len(s.Waypoints))
			for j, w := range s.Waypoints {
				s2.Waypoints[j] = l.ToMM(w)
			}
		}
		out.Segments[i] = s2
	}
	return out
}

// Simplify drops repeated waypoints and interior points that lie on the
// straight line between their neighbours.
func Simplify(points []board.Point) []board.Point {
	if len(points) == 0 {
		return nil
	}
	dedup := make([]board.Point, 0, len(points))
	for _, p := range points {
		if len(dedup) > 0 && dedup[len(dedup)-1].Equal(p) {
			continue
		}
		dedup = append(dedup, p)
	}
	if len(dedup) < 3 {
		return dedup
	}

	out := []board.Point{dedup[0]}
	for i := 1; i < len(dedup)-1; i++ {
		a, b, c := out[len(out)-1], dedup[i], dedup[i+1]
		if collinear(a, b, c) {
			continue
		}
		out = append(out, b)
	}
	return append(out, dedup[len(dedup)-1])
}

// collinear reports whether b lies on segment a-c, between the two ends.
func collinear(a, b, c board.Point) bool {
	const eps = 1e-9
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if cross > eps || cross < -eps {
		return false
	}
	dot := (b.X-a.X)*(c.X-b.X) + (b.Y-a.Y)*(c.Y-b.Y)
	return dot >= -eps
}
