// SPDX-License-Identifier: MIT

package gcode

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{150, "150.0"},
		{0, "0.0"},
		{350, "350.0"},
		{45.714285714285715, "45.714285714285715"},
		{350.0 / 7 * 3, "150.0"},
		{-2.5, "-2.5"},
		{math.Inf(1), "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}

func TestFormatFixed(t *testing.T) {
	assert.Equal(t, "50.000", FormatFixed(50, 3))
	assert.Equal(t, "0.000", FormatFixed(-0.0001, 3))
	assert.Equal(t, "12.346", Fixed(3)(12.3456))
}

func TestBuilders(t *testing.T) {
	tests := []struct {
		cmd  Command
		want string
	}{
		{G21().WithComment("Set units to mm"), "G21 ; Set units to mm"},
		{Home(), "G28"},
		{Home("x", "y"), "G28 X Y"},
		{Rapid(150, 300, 0, nil), "G0 X150.0 Y300.0"},
		{Rapid(50, 10.5, 4200, Fixed(3)), "G0 X50.000 Y10.500 F4200"},
		{Dwell(120), "G4 P120"},
		{FanSpeed("magnet", 1), "SET_FAN_SPEED FAN=magnet SPEED=1.0"},
		{FanSpeed("magnet", 0), "SET_FAN_SPEED FAN=magnet SPEED=0.0"},
		{HeaterTemp("extruder", 0), "SET_HEATER_TEMPERATURE HEATER=extruder TARGET=0.0"},
		{MotorsOn(), "M17"},
		{WaitMoves(), "M400"},
		{Comment("Move from e2"), "; Move from e2"},
		{ExtruderOff(), "M104 S0 ; Turn off extruder"},
		{BedOff(), "M140 S0 ; Turn off heated bed"},
		{FanOff(), "M107 ; Turn off fan"},
		{MotorsOff(), "M84 ; Disable motors"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestProgram_StringAndCounts(t *testing.T) {
	var p Program
	p.Append(SetupBlock()...)
	p.Append(Rapid(150, 300, 0, nil), Comment("Move from e2"))
	p.Append(ShutdownBlock()...)

	assert.Equal(t, 9, p.Len())
	assert.Equal(t, 8, p.Commands())

	out := p.String()
	assert.True(t, strings.HasPrefix(out, "G21 ; Set units to mm\nG90 ; Use absolute positioning\nG28 ; Home all axes\n"))
	assert.True(t, strings.HasSuffix(out, "M84 ; Disable motors\n"))

	var buf bytes.Buffer
	n, err := p.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(out)), n)
	assert.Equal(t, out, buf.String())
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		in      string
		want    Command
		wantErr error
	}{
		{"G0 X150.0 Y300.0", Command{Mnemonic: "G0", Params: []Param{{"X", "150.0"}, {"Y", "300.0"}}}, nil},
		{"  G21 ; Set units to mm ", Command{Mnemonic: "G21", Comment: "Set units to mm"}, nil},
		{"; Move to e4", Command{Comment: "Move to e4"}, nil},
		{"G28 X Y", Command{Mnemonic: "G28", Params: []Param{{"X", ""}, {"Y", ""}}}, nil},
		{"SET_FAN_SPEED FAN=magnet SPEED=1.0", Command{Mnemonic: "SET_FAN_SPEED", Params: []Param{{"FAN", "magnet"}, {"SPEED", "1.0"}}, Extended: true}, nil},
		{"   ", Command{}, ErrEmptyLine},
		{"1G0", Command{}, ErrBadMnemonic},
		{"G0 =5", Command{}, ErrBadParam},
		{"G0 150", Command{}, ErrBadParam},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLine(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseLine mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	var p Program
	p.Append(SetupBlock()...)
	p.Append(Rapid(45.714285714285715, 0, 0, nil), Comment("Move from a8"))
	p.Append(FanSpeed("magnet", 1), Dwell(120))
	p.Append(ShutdownBlock()...)

	parsed, err := Parse(strings.NewReader(p.String() + "\n\n"))
	require.NoError(t, err)
	assert.Equal(t, p.String(), parsed.String())
}

func TestParse_ReportsLineNumber(t *testing.T) {
	_, err := Parse(strings.NewReader("G21\n\nG0 X1 Y1\n9X\n"))
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 4, pe.Line)
	assert.ErrorIs(t, err, ErrBadMnemonic)
}

func TestValidate(t *testing.T) {
	src := strings.Join([]string{
		"G21 ; Set units to mm",
		"g90",
		"G0 Xabc Y10",
		"M999",
		"SET_FAN_SPEED FAN=magnet SPEED=1.0",
		"; just a comment",
		"",
		"G28 X Y",
		"%%%",
	}, "\n")

	rep, err := Validate(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, 9, rep.Lines)
	assert.Equal(t, 6, rep.Commands)
	assert.False(t, rep.OK())
	assert.Equal(t, 3, rep.Count(SeverityError))
	assert.Equal(t, 1, rep.Count(SeverityWarning))

	lines := make([]int, 0, len(rep.Issues))
	for _, i := range rep.Issues {
		lines = append(lines, i.Line)
	}
	assert.Equal(t, []int{2, 3, 4, 9}, lines)
}

func TestValidate_LongLine(t *testing.T) {
	long := "; " + strings.Repeat("x", 70*1024)
	src := "G28 X Y\n" + long + "\nG0 Xabc\r\nM400"

	rep, err := Validate(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Lines)
	assert.Equal(t, 3, rep.Commands)
	require.Len(t, rep.Issues, 2)

	assert.Equal(t, 2, rep.Issues[0].Line)
	assert.Equal(t, SeverityError, rep.Issues[0].Severity)
	assert.Contains(t, rep.Issues[0].Message, "longer than")
	assert.Len(t, rep.Issues[0].Text, MaxLineLength)

	// reading goes on after the long line
	assert.Equal(t, 3, rep.Issues[1].Line)
	assert.Equal(t, "G0 Xabc", rep.Issues[1].Text)
}

func TestValidate_CleanProgram(t *testing.T) {
	var p Program
	p.Append(SetupBlock()...)
	p.Append(MotorsOn(), Home("X", "Y"), Rapid(1, 2, 4200, Fixed(3)), WaitMoves())
	p.Append(ShutdownBlock()...)

	rep, err := Validate(strings.NewReader(p.String()))
	require.NoError(t, err)
	assert.True(t, rep.OK())
	assert.Empty(t, rep.Issues)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gcode")
	var p Program
	p.Append(SetupBlock()...)

	require.NoError(t, WriteFile(path, p))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p.String(), string(data))

	// overwrite replaces atomically
	p.Append(ShutdownBlock()...)
	require.NoError(t, WriteFile(path, p))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, p.String(), string(data))
}
