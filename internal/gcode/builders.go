// SPDX-License-Identifier: MIT

package gcode

import (
	"strconv"
	"strings"
)

func word(mnemonic string, params ...Param) Command {
	return Command{Mnemonic: mnemonic, Params: params}
}

// G21 selects millimetre units.
func G21() Command { return word("G21") }

// G90 selects absolute positioning.
func G90() Command { return word("G90") }

// Home builds G28, optionally restricted to the given axes ("G28 X Y").
func Home(axes ...string) Command {
	params := make([]Param, 0, len(axes))
	for _, a := range axes {
		params = append(params, Param{Key: strings.ToUpper(a)})
	}
	return word("G28", params...)
}

// Rapid builds a G0 move. feed <= 0 omits the F word.
func Rapid(x, y float64, feed int, f NumberFormat) Command {
	if f == nil {
		f = FormatFloat
	}
	c := word("G0", Param{Key: "X", Value: f(x)}, Param{Key: "Y", Value: f(y)})
	if feed > 0 {
		c.Params = append(c.Params, Param{Key: "F", Value: strconv.Itoa(feed)})
	}
	return c
}

// Dwell pauses for ms milliseconds (G4 P<ms>).
func Dwell(ms int) Command {
	return word("G4", Param{Key: "P", Value: strconv.Itoa(ms)})
}

// FanSpeed builds a Klipper SET_FAN_SPEED for a named generic fan.
func FanSpeed(fan string, speed float64) Command {
	return Command{
		Mnemonic: "SET_FAN_SPEED",
		Params:   []Param{{Key: "FAN", Value: fan}, {Key: "SPEED", Value: FormatFloat(speed)}},
		Extended: true,
	}
}

// HeaterTemp builds a Klipper SET_HEATER_TEMPERATURE.
func HeaterTemp(heater string, target float64) Command {
	return Command{
		Mnemonic: "SET_HEATER_TEMPERATURE",
		Params:   []Param{{Key: "HEATER", Value: heater}, {Key: "TARGET", Value: FormatFloat(target)}},
		Extended: true,
	}
}

// MotorsOn enables the steppers (M17).
func MotorsOn() Command { return word("M17") }

// WaitMoves blocks until queued moves finish (M400).
func WaitMoves() Command { return word("M400") }

// Comment builds a comment-only line.
func Comment(text string) Command { return Command{Comment: text} }

// ExtruderOff sets the hotend target to zero.
func ExtruderOff() Command {
	return word("M104", Param{Key: "S", Value: "0"}).WithComment("Turn off extruder")
}

// BedOff sets the heated bed target to zero.
func BedOff() Command {
	return word("M140", Param{Key: "S", Value: "0"}).WithComment("Turn off heated bed")
}

// FanOff stops the part cooling fan.
func FanOff() Command { return word("M107").WithComment("Turn off fan") }

// MotorsOff releases the steppers.
func MotorsOff() Command { return word("M84").WithComment("Disable motors") }

// SetupBlock is the preamble every program starts with.
func SetupBlock() []Command {
	return []Command{
		G21().WithComment("Set units to mm"),
		G90().WithComment("Use absolute positioning"),
		Home().WithComment("Home all axes"),
	}
}

// ShutdownBlock leaves heaters, fan and motors off.
func ShutdownBlock() []Command {
	return []Command{ExtruderOff(), BedOff(), FanOff(), MotorsOff()}
}
