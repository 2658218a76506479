// SPDX-License-Identifier: MIT

package board

// Occupancy is a bitboard of occupied squares, bit index rank*8+file.
type Occupancy uint64

func bit(s Square) Occupancy {
	return 1 << uint(s.Rank*8+s.File)
}

// Has reports whether s is occupied. Off-board squares are never occupied.
func (o Occupancy) Has(s Square) bool {
	return s.Valid() && o&bit(s) != 0
}

// With returns o with s marked occupied.
func (o Occupancy) With(s Square) Occupancy {
	if !s.Valid() {
		return o
	}
	return o | bit(s)
}

// Without returns o with s cleared.
func (o Occupancy) Without(s Square) Occupancy {
	if !s.Valid() {
		return o
	}
	return o &^ bit(s)
}

// Count returns the number of occupied squares.
func (o Occupancy) Count() int {
	n := 0
	for v := uint64(o); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// StartPosition is the occupancy of the initial chess position.
const StartPosition Occupancy = 0xFFFF00000000FFFF
