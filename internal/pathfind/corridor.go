// SPDX-License-Identifier: MIT

// Package pathfind plans how a piece travels across the board. All
// coordinates are board units: one square is 1.0 wide, the a1 centre is
// (0.5, 0.5) and +Y points toward rank 8.
package pathfind

import (
	"container/heap"
	"errors"

	"github.com/ManuGH/printerchess/internal/board"
)

// ErrNoPath is returned when occupied squares wall off the destination.
var ErrNoPath = errors.New("no corridor path")

// The corridor graph lives on a half-square grid: node (i, j) sits at
// (i/2, j/2). Odd/odd nodes are square centres, odd/even and even/odd nodes
// are the midpoints between two orthogonally adjacent centres. Even/even
// points are square corners and are not part of the graph, so a midpoint only
// links the two centres it separates.
const gridMax = 15

type node struct{ i, j int }

func (n node) valid() bool {
	if n.i < 1 || n.i > gridMax || n.j < 1 || n.j > gridMax {
		return false
	}
	return n.i%2 == 1 || n.j%2 == 1
}

func (n node) centre() (board.Square, bool) {
	if n.i%2 == 0 || n.j%2 == 0 {
		return board.Square{}, false
	}
	return board.Square{File: (n.i - 1) / 2, Rank: (n.j - 1) / 2}, true
}

func (n node) point() board.Point {
	return board.Point{X: float64(n.i) / 2, Y: float64(n.j) / 2}
}

func nodeOf(s board.Square) node {
	return node{i: 2*s.File + 1, j: 2*s.Rank + 1}
}

func manhattan(a, b node) float64 {
	return float64(absInt(a.i-b.i)+absInt(a.j-b.j)) / 2
}

const edgeCost = 0.5

var steps = [4]node{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

type item struct {
	n   node
	f   float64
	h   float64
	seq int
}

type openSet []item

func (o openSet) Len() int { return len(o) }
func (o openSet) Less(a, b int) bool {
	if o[a].f != o[b].f {
		return o[a].f < o[b].f
	}
	if o[a].h != o[b].h {
		return o[a].h < o[b].h
	}
	return o[a].seq < o[b].seq
}
func (o openSet) Swap(a, b int) { o[a], o[b] = o[b], o[a] }
func (o *openSet) Push(x any)   { *o = append(*o, x.(item)) }
func (o *openSet) Pop() any {
	old := *o
	it := old[len(old)-1]
	*o = old[:len(old)-1]
	return it
}

// Corridor finds the shortest route from the centre of from to the centre of
// to that passes only through empty square centres and the midpoints between
// them. The start and goal squares are never treated as blocked.
func Corridor(from, to board.Square, occ board.Occupancy) ([]board.Point, error) {
	if !from.Valid() || !to.Valid() {
		return nil, board.ErrBadSquare
	}
	start, goal := nodeOf(from), nodeOf(to)
	if start == goal {
		return []board.Point{start.point()}, nil
	}

	blocked := func(n node) bool {
		sq, ok := n.centre()
		if !ok || sq == from || sq == to {
			return false
		}
		return occ.Has(sq)
	}

	g := map[node]float64{start: 0}
	came := map[node]node{}
	closed := map[node]bool{}
	seq := 0
	open := &openSet{{n: start, f: manhattan(start, goal), h: manhattan(start, goal)}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(item).n
		if cur == goal {
			return reconstruct(came, start, goal), nil
		}
		if closed[cur] {
			continue
		}
		closed[cur] = true

		for _, s := range steps {
			nb := node{i: cur.i + s.i, j: cur.j + s.j}
			if !nb.valid() || closed[nb] || blocked(nb) {
				continue
			}
			t := g[cur] + edgeCost
			if old, seen := g[nb]; seen && t >= old {
				continue
			}
			g[nb] = t
			came[nb] = cur
			seq++
			h := manhattan(nb, goal)
			heap.Push(open, item{n: nb, f: t + h, h: h, seq: seq})
		}
	}
	return nil, ErrNoPath
}

func reconstruct(came map[node]node, start, goal node) []board.Point {
	var rev []board.Point
	for n := goal; ; n = came[n] {
		rev = append(rev, n.point())
		if n == start {
			break
		}
	}
	out := make([]board.Point, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
