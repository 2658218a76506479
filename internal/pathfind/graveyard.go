// SPDX-License-Identifier: MIT

package pathfind

import (
	"errors"
	"sync"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/config"
)

// ErrGraveyardFull means every slot already holds a captured piece.
var ErrGraveyardFull = errors.New("graveyard full")

// Graveyard hands out parking slots for captured pieces in a grid to the
// right of the h-file. Slots are filled outermost column first, bottom to
// top, so a piece travelling to a new slot never crosses an occupied one.
type Graveyard struct {
	Gap     float64 // board edge to the inner edge of the first column
	Spacing float64 // centre distance between slots
	Rows    int
	Columns int

	mu   sync.Mutex
	used int
}

// NewGraveyard builds a graveyard from configuration.
func NewGraveyard(cfg config.GraveyardConfig) *Graveyard {
	return &Graveyard{Gap: cfg.Gap, Spacing: cfg.Spacing, Rows: cfg.Rows, Columns: cfg.Columns}
}

// Capacity is the number of slots.
func (g *Graveyard) Capacity() int {
	return g.Rows * g.Columns
}

// Slot returns the centre of slot (col, row). Column 0 is nearest the board.
func (g *Graveyard) Slot(col, row int) board.Point {
	return board.Point{
		X: 8 + g.Gap + 0.5 + float64(col)*g.Spacing,
		Y: 0.5 + float64(row)*g.Spacing,
	}
}

// Next reserves the next free slot. Both colours share one sequence; the
// colour is accepted so callers can log it.
func (g *Graveyard) Next(_ string) (board.Point, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.used >= g.Capacity() {
		return board.Point{}, ErrGraveyardFull
	}
	i := g.used
	g.used++
	col := g.Columns - 1 - i/g.Rows
	row := i % g.Rows
	return g.Slot(col, row), nil
}

// Count returns how many slots are taken.
func (g *Graveyard) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.used
}

// Reset empties the graveyard, e.g. after the board was set up again.
func (g *Graveyard) Reset() {
	g.mu.Lock()
	g.used = 0
	g.mu.Unlock()
}

// InnerEdge is the x coordinate of the graveyard's board-facing edge.
func (g *Graveyard) InnerEdge() float64 {
	return 8 + g.Gap
}
