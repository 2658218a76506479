// SPDX-License-Identifier: MIT

package motion

import (
	"fmt"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/chessgame"
	"github.com/ManuGH/printerchess/internal/config"
	"github.com/ManuGH/printerchess/internal/pathfind"
)

// Planner computes magnet plans for whole games. It holds no per-game
// state and is safe for concurrent use.
type Planner struct {
	Router    pathfind.Router
	Graveyard config.GraveyardConfig
	// Start is where the magnet sits before the first ply, if known.
	Start *board.Point
}

// NewPlanner builds a planner from configuration.
func NewPlanner(motion config.MotionConfig, graveyard config.GraveyardConfig) (*Planner, error) {
	mode, err := pathfind.ParseMode(motion.Routing)
	if err != nil {
		return nil, err
	}
	return &Planner{Router: pathfind.Router{Mode: mode}, Graveyard: graveyard}, nil
}

type planState struct {
	pos   *board.Point
	grave *pathfind.Graveyard
}

func (s *planState) travel(plan *Plan, to board.Point) {
	wp := []board.Point{to}
	if s.pos != nil && !s.pos.Equal(to) {
		wp = []board.Point{*s.pos, to}
	}
	plan.Segments = append(plan.Segments, Segment{Kind: KindTravel, Waypoints: wp})
	s.moveTo(to)
}

// carry grabs at the first waypoint, drags along path and releases at the end.
func (s *planState) carry(plan *Plan, path []board.Point) {
	path = Simplify(path)
	start, end := path[0], path[len(path)-1]
	plan.Segments = append(plan.Segments,
		Segment{Kind: KindGrab, Waypoints: []board.Point{start}, Magnet: true},
		Segment{Kind: KindDrag, Waypoints: path, Magnet: true},
		Segment{Kind: KindRelease, Waypoints: []board.Point{end}},
	)
	s.moveTo(end)
}

func (s *planState) moveTo(p board.Point) {
	q := p
	s.pos = &q
}

// PlanGame plans every ply of g in order.
func (p *Planner) PlanGame(g chessgame.Game) ([]Plan, error) {
	st := &planState{pos: p.Start, grave: pathfind.NewGraveyard(p.Graveyard)}
	plans := make([]Plan, 0, len(g.Plies))
	for i, ply := range g.Plies {
		plan, err := p.planPly(st, ply, g.Occupancy(i))
		if err != nil {
			return nil, fmt.Errorf("ply %d (%s): %w", i+1, ply.UCI, err)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (p *Planner) planPly(st *planState, ply chessgame.Ply, occ board.Occupancy) (Plan, error) {
	plan := Plan{Ply: ply}

	if ply.Castle != chessgame.NoCastle {
		st.travel(&plan, ply.RookFrom.Center())
		st.carry(&plan, pathfind.RookCastle(ply.RookFrom, ply.RookTo))
		st.travel(&plan, ply.From.Center())
		st.carry(&plan, pathfind.KingCastle(ply.From, ply.To))
		return plan, nil
	}

	if ply.Capture {
		slot, err := st.grave.Next(string(opponent(ply.Color)))
		if err != nil {
			return Plan{}, err
		}
		victim := ply.CaptureSquare.Center()
		st.travel(&plan, victim)
		st.carry(&plan, pathfind.Escape(victim, slot))
		occ = occ.Without(ply.CaptureSquare)
	}

	route, fellBack, err := p.Router.Route(ply.From, ply.To, ply.Piece == chessgame.Knight, occ)
	if err != nil {
		return Plan{}, err
	}
	plan.FellBack = fellBack
	st.travel(&plan, ply.From.Center())
	st.carry(&plan, route)

	if ply.Promotion != chessgame.NoPiece {
		plan.Segments = append(plan.Segments, Segment{
			Kind: KindNote,
			Note: fmt.Sprintf("promote %s on %s to %s", ply.Color, ply.To, ply.Promotion),
		})
	}
	return plan, nil
}

func opponent(c chessgame.Color) chessgame.Color {
	if c == chessgame.White {
		return chessgame.Black
	}
	return chessgame.White
}
