// SPDX-License-Identifier: MIT

package board

import (
	"fmt"

	"github.com/ManuGH/printerchess/internal/config"
)

// Layout maps board geometry to machine millimetres.
type Layout interface {
	Name() string
	// SquareMM returns the machine position of a square's reference point.
	SquareMM(Square) Point
	// ToMM maps an arbitrary point in board units.
	ToMM(Point) Point
}

// LegacyLayout mirrors the files and counts ranks down from 8, with a step
// of Size/7 between adjacent squares: a8 sits at (Size, 0) and h1 at (0, Size).
type LegacyLayout struct {
	Size float64
}

func (LegacyLayout) Name() string { return "legacy" }

// SquareMM uses the integer form x = (7-f)*Size/7, y = (8-n)*Size/7 with
// n the rank digit, so the printed numbers are exactly reproducible.
func (l LegacyLayout) SquareMM(s Square) Point {
	step := l.Size / 7
	return Point{
		X: float64(7-s.File) * step,
		Y: float64(8-(s.Rank+1)) * step,
	}
}

// ToMM is the affine map that agrees with SquareMM at square centres.
func (l LegacyLayout) ToMM(p Point) Point {
	step := l.Size / 7
	return Point{X: (7.5 - p.X) * step, Y: (7.5 - p.Y) * step}
}

// WorkArea places the board inside a rectangle of the bed, a1 at the
// lower-left corner.
type WorkArea struct {
	XMin, YMin    float64
	Width, Height float64
}

func (WorkArea) Name() string { return "workarea" }

func (w WorkArea) SquareMM(s Square) Point {
	return w.ToMM(s.Center())
}

func (w WorkArea) ToMM(p Point) Point {
	return Point{
		X: w.XMin + p.X*w.Width/8,
		Y: w.YMin + p.Y*w.Height/8,
	}
}

// NewLayout builds the layout selected in configuration.
func NewLayout(cfg config.BoardConfig) (Layout, error) {
	switch cfg.Layout {
	case "", "legacy":
		if cfg.Size <= 0 {
			return nil, fmt.Errorf("legacy layout: size must be positive, got %g", cfg.Size)
		}
		return LegacyLayout{Size: cfg.Size}, nil
	case "workarea":
		if cfg.Width <= 0 || cfg.Height <= 0 {
			return nil, fmt.Errorf("workarea layout: width and height must be positive")
		}
		return WorkArea{XMin: cfg.XMin, YMin: cfg.YMin, Width: cfg.Width, Height: cfg.Height}, nil
	default:
		return nil, fmt.Errorf("unknown board layout %q", cfg.Layout)
	}
}
