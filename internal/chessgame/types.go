// SPDX-License-Identifier: MIT

// Package chessgame turns PGN or UCI input into the physical moves a board
// robot has to perform: which square a piece leaves, where it lands, what
// gets captured and where, and the rook's second move when castling.
package chessgame

import (
	"encoding/json"

	"github.com/ManuGH/printerchess/internal/board"
)

// PieceKind names a chess piece type.
type PieceKind string

const (
	NoPiece PieceKind = ""
	King    PieceKind = "king"
	Queen   PieceKind = "queen"
	Rook    PieceKind = "rook"
	Bishop  PieceKind = "bishop"
	Knight  PieceKind = "knight"
	Pawn    PieceKind = "pawn"
)

// Color is the side to move.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Castle tells which side a king castled to.
type Castle string

const (
	NoCastle  Castle = ""
	KingSide  Castle = "king"
	QueenSide Castle = "queen"
)

// Ply is one half-move expressed as physical piece movement.
type Ply struct {
	Index int          `json:"index"`
	From  board.Square `json:"from"`
	To    board.Square `json:"to"`
	Piece PieceKind    `json:"piece"`
	Color Color        `json:"color"`
	UCI   string       `json:"uci"`
	SAN   string       `json:"san"`

	Capture       bool         `json:"capture,omitempty"`
	CaptureSquare board.Square `json:"captureSquare,omitempty"`
	Captured      PieceKind    `json:"captured,omitempty"`
	EnPassant     bool         `json:"enPassant,omitempty"`

	Castle   Castle       `json:"castle,omitempty"`
	RookFrom board.Square `json:"rookFrom,omitempty"`
	RookTo   board.Square `json:"rookTo,omitempty"`

	Promotion PieceKind `json:"promotion,omitempty"`
}

// MarshalJSON leaves out the capture and rook squares of plies that have
// none; their zero value would otherwise read as a1.
func (p Ply) MarshalJSON() ([]byte, error) {
	type plain Ply
	out := struct {
		plain
		CaptureSquare *board.Square `json:"captureSquare,omitempty"`
		RookFrom      *board.Square `json:"rookFrom,omitempty"`
		RookTo        *board.Square `json:"rookTo,omitempty"`
	}{plain: plain(p)}
	if p.Capture {
		out.CaptureSquare = &p.CaptureSquare
	}
	if p.Castle != NoCastle {
		out.RookFrom, out.RookTo = &p.RookFrom, &p.RookTo
	}
	return json.Marshal(out)
}

// Game is a parsed main line.
type Game struct {
	Plies   []Ply             `json:"plies"`
	Outcome string            `json:"outcome"` // 1-0, 0-1, 1/2-1/2 or *
	Reason  string            `json:"reason,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`

	occupancy []board.Occupancy
}

// Occupancy returns the occupied squares before ply i. i == len(Plies)
// gives the final position.
func (g Game) Occupancy(i int) board.Occupancy {
	if i < 0 || i >= len(g.occupancy) {
		return 0
	}
	return g.occupancy[i]
}

// Over reports whether the game reached a decided result.
func (g Game) Over() bool {
	return g.Outcome != "" && g.Outcome != "*"
}
