// SPDX-License-Identifier: MIT

package board

import (
	"encoding/json"
	"testing"

	"github.com/ManuGH/printerchess/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSquare(t *testing.T) {
	tests := []struct {
		in      string
		want    Square
		wantErr bool
	}{
		{"a1", Square{0, 0}, false},
		{"h8", Square{7, 7}, false},
		{" E2 ", Square{4, 1}, false},
		{"i1", Square{}, true},
		{"a9", Square{}, true},
		{"a0", Square{}, true},
		{"e", Square{}, true},
		{"e22", Square{}, true},
		{"", Square{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSquare(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadSquare)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, MustSquare(got.String()))
		})
	}
}

func TestSquare_CenterAndJSON(t *testing.T) {
	sq := MustSquare("c5")
	assert.Equal(t, Point{X: 2.5, Y: 4.5}, sq.Center())

	b, err := json.Marshal(struct{ S Square }{sq})
	require.NoError(t, err)
	assert.JSONEq(t, `{"S":"c5"}`, string(b))

	var back struct{ S Square }
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, sq, back.S)
}

func TestLegacyLayout_SampleGame(t *testing.T) {
	l := LegacyLayout{Size: 350}
	moves := []string{"e2", "e4", "e7", "e5", "g1", "f3", "b8", "c6"}
	want := []Point{
		{150, 300}, {150, 200}, {150, 50}, {150, 150},
		{50, 350}, {100, 250}, {300, 0}, {250, 100},
	}
	for i, m := range moves {
		assert.Equal(t, want[i], l.SquareMM(MustSquare(m)), m)
	}
}

func TestLegacyLayout_ToMMAgreesAtCentres(t *testing.T) {
	l := LegacyLayout{Size: 350}
	for f := 0; f < 8; f++ {
		for r := 0; r < 8; r++ {
			sq := Square{File: f, Rank: r}
			a, b := l.SquareMM(sq), l.ToMM(sq.Center())
			assert.InDelta(t, a.X, b.X, 1e-9, sq.String())
			assert.InDelta(t, a.Y, b.Y, 1e-9, sq.String())
		}
	}
}

func TestWorkArea(t *testing.T) {
	w := WorkArea{XMin: 10, YMin: 10, Width: 320, Height: 320}
	assert.Equal(t, Point{X: 30, Y: 30}, w.SquareMM(MustSquare("a1")))
	assert.Equal(t, Point{X: 310, Y: 310}, w.SquareMM(MustSquare("h8")))
	assert.Equal(t, Point{X: 10, Y: 10}, w.ToMM(Point{}))
}

func TestNewLayout(t *testing.T) {
	l, err := NewLayout(config.BoardConfig{Layout: "legacy", Size: 350})
	require.NoError(t, err)
	assert.Equal(t, "legacy", l.Name())

	l, err = NewLayout(config.BoardConfig{Layout: "workarea", Width: 320, Height: 320})
	require.NoError(t, err)
	assert.Equal(t, "workarea", l.Name())

	_, err = NewLayout(config.BoardConfig{Layout: "hex"})
	assert.Error(t, err)
}

func TestOccupancy(t *testing.T) {
	o := StartPosition
	assert.Equal(t, 32, o.Count())
	assert.True(t, o.Has(MustSquare("e2")))
	assert.False(t, o.Has(MustSquare("e4")))

	o = o.Without(MustSquare("e2")).With(MustSquare("e4"))
	assert.False(t, o.Has(MustSquare("e2")))
	assert.True(t, o.Has(MustSquare("e4")))
	assert.Equal(t, 32, o.Count())
	assert.False(t, o.Has(Square{File: 8, Rank: 0}))
}
