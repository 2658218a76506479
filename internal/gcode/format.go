// SPDX-License-Identifier: MIT

package gcode

import (
	"strconv"
	"strings"
)

// NumberFormat renders a coordinate or parameter value.
type NumberFormat func(float64) string

// FormatFloat renders v as the shortest decimal that round-trips, always
// with a fractional part: 150 -> "150.0", 45.714285714285715 stays as is.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}

// FormatFixed renders v with exactly prec fractional digits.
func FormatFixed(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if s == "-"+strconv.FormatFloat(0, 'f', prec, 64) {
		// -0.000 reads badly in a machine log
		return s[1:]
	}
	return s
}

// Fixed returns a NumberFormat with prec fractional digits.
func Fixed(prec int) NumberFormat {
	return func(v float64) string { return FormatFixed(v, prec) }
}
