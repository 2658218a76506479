// SPDX-License-Identifier: MIT

package chessgame

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sq(s string) board.Square { return board.MustSquare(s) }

func TestFromPGN_SampleGame(t *testing.T) {
	g, err := FromPGN(strings.NewReader("1. e4 e5 2. Nf3 Nc6"))
	require.NoError(t, err)
	require.Len(t, g.Plies, 4)

	want := [][2]string{{"e2", "e4"}, {"e7", "e5"}, {"g1", "f3"}, {"b8", "c6"}}
	for i, w := range want {
		assert.Equal(t, sq(w[0]), g.Plies[i].From, "ply %d from", i)
		assert.Equal(t, sq(w[1]), g.Plies[i].To, "ply %d to", i)
		assert.Equal(t, i, g.Plies[i].Index)
	}
	assert.Equal(t, Pawn, g.Plies[0].Piece)
	assert.Equal(t, Knight, g.Plies[2].Piece)
	assert.Equal(t, Black, g.Plies[3].Color)
	assert.Equal(t, "g1f3", g.Plies[2].UCI)
	assert.Equal(t, "Nf3", g.Plies[2].SAN)
	assert.Equal(t, "*", g.Outcome)
	assert.False(t, g.Over())
}

func TestFromPGN_TagsAndResult(t *testing.T) {
	pgn := `[Event "Casual"]
[White "A"]
[Black "B"]
[Result "1-0"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0
`
	g, err := FromPGN(strings.NewReader(pgn))
	require.NoError(t, err)

	assert.Equal(t, "Casual", g.Tags["Event"])
	assert.Equal(t, "1-0", g.Outcome)
	assert.Equal(t, "checkmate", g.Reason)

	last := g.Plies[len(g.Plies)-1]
	assert.True(t, last.Capture)
	assert.Equal(t, sq("f7"), last.CaptureSquare)
	assert.Equal(t, Pawn, last.Captured)
}

func TestFromUCI_FoolsMate(t *testing.T) {
	g, err := FromUCI([]string{"f2f3", "e7e5", "g2g4", "d8h4"})
	require.NoError(t, err)
	assert.Equal(t, "0-1", g.Outcome)
	assert.Equal(t, "checkmate", g.Reason)
	assert.True(t, g.Over())
}

func TestFromUCI_AcceptsSpaceSeparated(t *testing.T) {
	g, err := FromUCI([]string{"E2E4 e7e5", " g1f3 "})
	require.NoError(t, err)
	assert.Len(t, g.Plies, 3)
}

func TestFromUCI_RejectsIllegal(t *testing.T) {
	_, err := FromUCI([]string{"e2e4", "e7e4"})
	require.ErrorIs(t, err, ErrIllegalMove)
	assert.Contains(t, err.Error(), "ply 2")

	_, err = FromUCI(nil)
	require.ErrorIs(t, err, ErrEmptyGame)

	_, err = FromUCI([]string{"zz"})
	require.ErrorIs(t, err, ErrIllegalMove)
}

func TestFromUCI_EnPassant(t *testing.T) {
	g, err := FromUCI([]string{"e2e4", "a7a6", "e4e5", "d7d5", "e5d6"})
	require.NoError(t, err)

	ep := g.Plies[4]
	assert.True(t, ep.Capture)
	assert.True(t, ep.EnPassant)
	assert.Equal(t, sq("d6"), ep.To)
	assert.Equal(t, sq("d5"), ep.CaptureSquare)
	assert.Equal(t, Pawn, ep.Captured)
}

func TestFromUCI_Castling(t *testing.T) {
	g, err := FromUCI([]string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1",
		"d7d6", "d2d3", "c8e6", "b1c3", "d8d7", "c1e3", "e8c8",
	})
	require.NoError(t, err)

	short := g.Plies[6]
	assert.Equal(t, KingSide, short.Castle)
	assert.Equal(t, sq("h1"), short.RookFrom)
	assert.Equal(t, sq("f1"), short.RookTo)
	assert.False(t, short.Capture)

	long := g.Plies[13]
	assert.Equal(t, QueenSide, long.Castle)
	assert.Equal(t, sq("a8"), long.RookFrom)
	assert.Equal(t, sq("d8"), long.RookTo)
}

func TestFromUCI_Promotion(t *testing.T) {
	g, err := FromUCI([]string{
		"a2a4", "b7b5", "a4b5", "a7a6", "b5a6", "c8b7", "a6b7", "b8c6", "b7a8q",
	})
	require.NoError(t, err)

	promo := g.Plies[8]
	assert.Equal(t, Queen, promo.Promotion)
	assert.True(t, promo.Capture)
	assert.Equal(t, Rook, promo.Captured)
	assert.Equal(t, "b7a8q", promo.UCI)
}

func TestOccupancy(t *testing.T) {
	g, err := FromUCI([]string{"e2e4", "d7d5", "e4d5"})
	require.NoError(t, err)

	assert.Equal(t, board.StartPosition, g.Occupancy(0))
	assert.True(t, g.Occupancy(1).Has(sq("e4")))
	assert.False(t, g.Occupancy(1).Has(sq("e2")))
	assert.Equal(t, 32, g.Occupancy(2).Count())
	assert.Equal(t, 31, g.Occupancy(3).Count())
	assert.Equal(t, board.Occupancy(0), g.Occupancy(99))
}

func TestPlyJSON_OmitsUnusedSquares(t *testing.T) {
	g, err := FromUCI([]string{"e2e4", "d7d5", "e4d5"})
	require.NoError(t, err)

	quiet, err := json.Marshal(g.Plies[0])
	require.NoError(t, err)
	assert.NotContains(t, string(quiet), "captureSquare")
	assert.NotContains(t, string(quiet), "rookFrom")
	assert.Contains(t, string(quiet), `"from":"e2"`)

	capture, err := json.Marshal(g.Plies[2])
	require.NoError(t, err)
	assert.Contains(t, string(capture), `"captureSquare":"d5"`)
	assert.Contains(t, string(capture), `"captured":"pawn"`)
}

func TestFromPGN_RejectsGarbage(t *testing.T) {
	_, err := FromPGN(strings.NewReader("1. e4 e5 2. Qxf9"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadPGN)
	assert.Contains(t, err.Error(), `"Qxf9"`)
	assert.Contains(t, err.Error(), "ply 3")

	_, err = FromPGN(strings.NewReader("1. e4 zz9"))
	require.ErrorIs(t, err, ErrBadPGN)
	assert.Contains(t, err.Error(), `"zz9"`)
}

func TestFromPGN_SkipsAnnotations(t *testing.T) {
	tests := []struct {
		name  string
		pgn   string
		plies int
	}{
		{"comments variations nags", "1. e4 {best by test} e5 2. Nf3 $1 (2. Qh5 Nc6) Nc6! 3. Bb5 a6 *", 6},
		{"attached move numbers", "1.e4 e5 2.Nf3 Nc6 3.Bb5", 5},
		{"black move number", "1. e4 e5 2. Nf3 2... Nc6", 4},
		{"result ends movetext", "1. e4 e5 1/2-1/2", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := FromPGN(strings.NewReader(tt.pgn))
			require.NoError(t, err)
			assert.Len(t, g.Plies, tt.plies)
		})
	}
}

func TestMoveTokens(t *testing.T) {
	got := moveTokens("[Event \"x\"]\n\n1. e4 {c4 (no)} e5 (1... c5 (1... e6) 2. Nf3) 2. Nf3?! $2 ; Nc3\nNc6 1-0 3. Bb5")
	assert.Equal(t, []string{"e4", "e5", "Nf3", "Nc6"}, got)
}
