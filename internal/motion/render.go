// SPDX-License-Identifier: MIT

package motion

import (
	"errors"
	"fmt"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/config"
	"github.com/ManuGH/printerchess/internal/gcode"
)

// ErrUnknownMode is returned for a render mode other than legacy or magnet.
var ErrUnknownMode = errors.New("unknown render mode")

// Renderer turns plans into a G-code program.
type Renderer interface {
	Name() string
	Render(plans []Plan) (gcode.Program, error)
}

// NewRenderer returns the renderer for mode ("legacy" or "magnet").
func NewRenderer(mode string, layout board.Layout, cfg config.MotionConfig) (Renderer, error) {
	switch mode {
	case "", "legacy":
		return LegacyRenderer{Layout: layout}, nil
	case "magnet":
		return NewMagnetRenderer(layout, cfg), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
}

// LegacyRenderer emits the classic program: one rapid to the source square
// and one to the target square per ply, no magnet control.
type LegacyRenderer struct {
	Layout board.Layout
}

func (LegacyRenderer) Name() string { return "legacy" }

func (r LegacyRenderer) Render(plans []Plan) (gcode.Program, error) {
	var p gcode.Program
	p.Append(gcode.SetupBlock()...)
	for _, plan := range plans {
		from, to := plan.Ply.From, plan.Ply.To
		if !from.Valid() || !to.Valid() {
			return gcode.Program{}, fmt.Errorf("ply %d: %w", plan.Ply.Index+1, board.ErrBadSquare)
		}
		a, b := r.Layout.SquareMM(from), r.Layout.SquareMM(to)
		p.Append(
			gcode.Rapid(a.X, a.Y, 0, gcode.FormatFloat),
			gcode.Comment("Move from "+from.String()),
			gcode.Rapid(b.X, b.Y, 0, gcode.FormatFloat),
			gcode.Comment("Move to "+to.String()),
		)
	}
	p.Append(gcode.ShutdownBlock()...)
	return p, nil
}

// MagnetRenderer drives an electromagnet on a Klipper fan output.
type MagnetRenderer struct {
	Layout    board.Layout
	Feed      int
	DwellPick int
	DwellDrop int
	Fan       string
	On        float64
	Off       float64
	HomeAxes  []string
}

// NewMagnetRenderer builds a renderer from motion settings.
func NewMagnetRenderer(layout board.Layout, cfg config.MotionConfig) MagnetRenderer {
	return MagnetRenderer{
		Layout:    layout,
		Feed:      cfg.Feed,
		DwellPick: cfg.DwellPickMS,
		DwellDrop: cfg.DwellDropMS,
		Fan:       cfg.MagnetFan,
		On:        cfg.MagnetOn,
		Off:       cfg.MagnetOff,
		HomeAxes:  []string{"X", "Y"},
	}
}

func (MagnetRenderer) Name() string { return "magnet" }

// Header enables the motors and homes the configured axes.
func (r MagnetRenderer) Header() []gcode.Command {
	return []gcode.Command{
		gcode.G21().WithComment("Set units to mm"),
		gcode.G90().WithComment("Use absolute positioning"),
		gcode.MotorsOn(),
		gcode.Home(r.HomeAxes...),
	}
}

// Goto is a rapid to machine coordinates at the configured feed.
func (r MagnetRenderer) Goto(x, y float64) gcode.Command {
	return gcode.Rapid(x, y, r.Feed, gcode.Fixed(3))
}

// Magnet switches the magnet and waits for it to settle.
func (r MagnetRenderer) Magnet(on bool) []gcode.Command {
	if on {
		return []gcode.Command{gcode.FanSpeed(r.Fan, r.On), gcode.Dwell(r.DwellPick)}
	}
	return []gcode.Command{gcode.FanSpeed(r.Fan, r.Off), gcode.Dwell(r.DwellDrop)}
}

func (r MagnetRenderer) Render(plans []Plan) (gcode.Program, error) {
	var p gcode.Program
	p.Append(r.Header()...)

	var last *board.Point
	moveTo := func(pt board.Point) {
		mm := r.Layout.ToMM(pt)
		if last != nil && last.Equal(mm) {
			return
		}
		p.Append(r.Goto(mm.X, mm.Y))
		last = &mm
	}

	for _, plan := range plans {
		p.Append(gcode.Comment(fmt.Sprintf("%s%d %s", PlyMarker, plan.Ply.Index+1, plan.Ply.UCI)))
		for _, seg := range plan.Segments {
			switch seg.Kind {
			case KindTravel, KindDrag:
				for _, w := range seg.Waypoints {
					moveTo(w)
				}
			case KindGrab:
				p.Append(r.Magnet(true)...)
			case KindRelease:
				p.Append(r.Magnet(false)...)
			case KindNote:
				p.Append(gcode.Comment(seg.Note))
			default:
				return gcode.Program{}, fmt.Errorf("ply %d: unknown segment kind %q", plan.Ply.Index+1, seg.Kind)
			}
		}
	}

	p.Append(gcode.WaitMoves())
	p.Append(gcode.ShutdownBlock()...)
	return p, nil
}

// RenderPiece moves a single piece between two squares: go to the source,
// magnet on, go to the target, magnet off.
func (r MagnetRenderer) RenderPiece(from, to board.Square) (gcode.Program, error) {
	if !from.Valid() || !to.Valid() {
		return gcode.Program{}, board.ErrBadSquare
	}
	a, b := r.Layout.SquareMM(from), r.Layout.SquareMM(to)
	var p gcode.Program
	p.Append(gcode.Comment(fmt.Sprintf("move %s-%s", from, to)))
	p.Append(r.Goto(a.X, a.Y))
	p.Append(r.Magnet(true)...)
	p.Append(r.Goto(b.X, b.Y))
	p.Append(r.Magnet(false)...)
	return p, nil
}
