// SPDX-License-Identifier: MIT

package gcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding on one line.
type Issue struct {
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Text     string   `json:"text"`
}

// Report summarizes a validation run.
type Report struct {
	Lines    int     `json:"lines"`
	Commands int     `json:"commands"`
	Issues   []Issue `json:"issues"`
}

// OK reports whether the program has no errors. Warnings are allowed.
func (r Report) OK() bool {
	return r.Count(SeverityError) == 0
}

// Count returns the number of issues with the given severity.
func (r Report) Count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

var knownMnemonics = map[string]struct{}{
	"G0": {}, "G1": {}, "G4": {}, "G21": {}, "G28": {}, "G90": {}, "G91": {},
	"M17": {}, "M84": {}, "M104": {}, "M106": {}, "M107": {}, "M140": {}, "M400": {},
	"SET_FAN_SPEED": {}, "SET_HEATER_TEMPERATURE": {},
}

// Known reports whether mnemonic belongs to the dialect printerchess emits.
func Known(mnemonic string) bool {
	_, ok := knownMnemonics[mnemonic]
	return ok
}

// MaxLineLength is the longest program line Validate inspects.
const MaxLineLength = 4096

// Validate checks well-formedness only. Axis limits and machine state are
// the controller's business.
func Validate(r io.Reader) (Report, error) {
	var rep Report
	br := bufio.NewReaderSize(r, MaxLineLength)
	for {
		line, long, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rep, fmt.Errorf("read program: %w", err)
		}
		rep.Lines++
		add := func(sev Severity, msg string) {
			rep.Issues = append(rep.Issues, Issue{Line: rep.Lines, Severity: sev, Message: msg, Text: line})
		}
		if long {
			add(SeverityError, fmt.Sprintf("line longer than %d bytes", MaxLineLength))
			continue
		}

		cmd, err := ParseLine(line)
		if errors.Is(err, ErrEmptyLine) {
			continue
		}
		if err != nil {
			add(SeverityError, err.Error())
			continue
		}
		if cmd.IsComment() {
			continue
		}
		rep.Commands++

		if cmd.Mnemonic != strings.ToUpper(cmd.Mnemonic) {
			add(SeverityError, fmt.Sprintf("mnemonic %q must be upper case", cmd.Mnemonic))
			continue
		}
		if !Known(cmd.Mnemonic) {
			add(SeverityWarning, fmt.Sprintf("unknown mnemonic %q", cmd.Mnemonic))
		}
		if cmd.Extended {
			continue
		}
		for _, p := range cmd.Params {
			if p.Value == "" {
				// bare axis words, as in "G28 X Y"
				continue
			}
			if _, err := strconv.ParseFloat(p.Value, 64); err != nil {
				add(SeverityError, fmt.Sprintf("parameter %s has non-numeric value %q", p.Key, p.Value))
			}
		}
	}
	return rep, nil
}

// readLine returns the next line without its terminator. A line over
// MaxLineLength is consumed whole but returned cut to that length, with
// long set.
func readLine(br *bufio.Reader) (string, bool, error) {
	var b strings.Builder
	n := 0
	for {
		frag, more, err := br.ReadLine()
		if err != nil {
			if n > 0 && errors.Is(err, io.EOF) {
				return b.String(), n > MaxLineLength, nil
			}
			return "", false, err
		}
		if room := MaxLineLength - b.Len(); room > 0 {
			b.Write(frag[:min(len(frag), room)])
		}
		n += len(frag)
		if !more {
			return b.String(), n > MaxLineLength, nil
		}
	}
}
