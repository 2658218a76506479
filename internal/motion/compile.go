// SPDX-License-Identifier: MIT

package motion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/chessgame"
	"github.com/ManuGH/printerchess/internal/config"
	"github.com/ManuGH/printerchess/internal/gcode"
)

// ErrNoInput is returned when a request carries neither PGN nor moves.
var ErrNoInput = errors.New("either pgn or moves is required")

// ErrAmbiguousInput is returned when a request carries both PGN and moves.
var ErrAmbiguousInput = errors.New("pgn and moves are mutually exclusive")

// Input is a game as submitted by a user.
type Input struct {
	PGN   string   `json:"pgn,omitempty"`
	Moves []string `json:"moves,omitempty"`
}

// Game parses the input.
func (in Input) Game() (chessgame.Game, error) {
	hasPGN := strings.TrimSpace(in.PGN) != ""
	switch {
	case hasPGN && len(in.Moves) > 0:
		return chessgame.Game{}, ErrAmbiguousInput
	case hasPGN:
		return chessgame.FromPGN(strings.NewReader(in.PGN))
	case len(in.Moves) > 0:
		return chessgame.FromUCI(in.Moves)
	default:
		return chessgame.Game{}, ErrNoInput
	}
}

// Compiled is a game turned into plans and a program.
type Compiled struct {
	Mode    string
	Game    chessgame.Game
	Plans   []Plan
	Program gcode.Program
	Chunks  []string
}

// Fallbacks counts plies whose corridor route fell back to a straight drag.
func (c Compiled) Fallbacks() int {
	n := 0
	for _, p := range c.Plans {
		if p.FellBack {
			n++
		}
	}
	return n
}

// Compiler runs the whole pipeline: parse, plan, render, chunk.
type Compiler struct {
	Layout  board.Layout
	Planner *Planner
	Motion  config.MotionConfig
}

// NewCompiler builds a compiler from configuration.
func NewCompiler(cfg config.AppConfig) (*Compiler, error) {
	layout, err := board.NewLayout(cfg.Board)
	if err != nil {
		return nil, err
	}
	planner, err := NewPlanner(cfg.Motion, cfg.Graveyard)
	if err != nil {
		return nil, err
	}
	return &Compiler{Layout: layout, Planner: planner, Motion: cfg.Motion}, nil
}

// Magnet returns the magnet renderer for manual operations.
func (c *Compiler) Magnet() MagnetRenderer {
	return NewMagnetRenderer(c.Layout, c.Motion)
}

// Compile runs the pipeline. An empty mode uses the configured one.
func (c *Compiler) Compile(in Input, mode string) (Compiled, error) {
	if mode == "" {
		mode = c.Motion.Mode
	}
	renderer, err := NewRenderer(mode, c.Layout, c.Motion)
	if err != nil {
		return Compiled{}, err
	}
	g, err := in.Game()
	if err != nil {
		return Compiled{}, err
	}
	plans, err := c.Planner.PlanGame(g)
	if err != nil {
		return Compiled{}, fmt.Errorf("plan: %w", err)
	}
	prog, err := renderer.Render(plans)
	if err != nil {
		return Compiled{}, fmt.Errorf("render: %w", err)
	}
	return Compiled{
		Mode:    renderer.Name(),
		Game:    g,
		Plans:   plans,
		Program: prog,
		Chunks:  Chunks(prog),
	}, nil
}
