// SPDX-License-Identifier: MIT

// Package board holds chessboard geometry: squares, points in board units
// (one square = 1.0, a1 centre at 0.5,0.5) and layouts mapping them to
// machine millimetres.
package board

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadSquare is returned for anything outside a1..h8.
var ErrBadSquare = errors.New("invalid square")

// Square is a board square; File and Rank run 0..7 (a..h, 1..8).
type Square struct {
	File int
	Rank int
}

// ParseSquare parses algebraic notation such as "e2". Case and surrounding
// whitespace are ignored.
func ParseSquare(s string) (Square, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	if len(t) != 2 || t[0] < 'a' || t[0] > 'h' || t[1] < '1' || t[1] > '8' {
		return Square{}, fmt.Errorf("%w %q", ErrBadSquare, s)
	}
	return Square{File: int(t[0] - 'a'), Rank: int(t[1] - '1')}, nil
}

// MustSquare is ParseSquare for constants; it panics on bad input.
func MustSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}

// Valid reports whether the square lies on the board.
func (s Square) Valid() bool {
	return s.File >= 0 && s.File < 8 && s.Rank >= 0 && s.Rank < 8
}

func (s Square) String() string {
	if !s.Valid() {
		return fmt.Sprintf("?%d,%d", s.File, s.Rank)
	}
	return string([]byte{byte('a' + s.File), byte('1' + s.Rank)})
}

// Center returns the square centre in board units.
func (s Square) Center() Point {
	return Point{X: float64(s.File) + 0.5, Y: float64(s.Rank) + 0.5}
}

// MarshalText implements encoding.TextMarshaler.
func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w %d,%d", ErrBadSquare, s.File, s.Rank)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Square) UnmarshalText(b []byte) error {
	sq, err := ParseSquare(string(b))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}

// Point is a 2D position, in board units or millimetres depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Equal compares with a small tolerance to absorb float noise from routing.
func (p Point) Equal(q Point) bool {
	const eps = 1e-9
	return abs(p.X-q.X) < eps && abs(p.Y-q.Y) < eps
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
