// SPDX-License-Identifier: MIT

package gcode

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrEmptyLine is returned by ParseLine for blank input.
	ErrEmptyLine = errors.New("empty line")
	// ErrBadMnemonic marks a command word that is not [A-Za-z][A-Za-z0-9_.]*.
	ErrBadMnemonic = errors.New("invalid mnemonic")
	// ErrBadParam marks a parameter without a key.
	ErrBadParam = errors.New("invalid parameter")
)

// ParseError locates a parse failure in a program.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLine parses one line. Case is preserved so Validate can flag it.
func ParseLine(s string) (Command, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Command{}, ErrEmptyLine
	}

	code, comment, hasComment := strings.Cut(s, ";")
	code = strings.TrimSpace(code)
	var cmd Command
	if hasComment {
		cmd.Comment = strings.TrimSpace(comment)
	}
	if code == "" {
		return cmd, nil
	}

	fields := strings.Fields(code)
	if !validMnemonic(fields[0]) {
		return Command{}, fmt.Errorf("%w %q", ErrBadMnemonic, fields[0])
	}
	cmd.Mnemonic = fields[0]

	for _, f := range fields[1:] {
		if key, value, ok := strings.Cut(f, "="); ok {
			if key == "" {
				return Command{}, fmt.Errorf("%w %q", ErrBadParam, f)
			}
			cmd.Extended = true
			cmd.Params = append(cmd.Params, Param{Key: key, Value: value})
			continue
		}
		if !isLetter(f[0]) {
			return Command{}, fmt.Errorf("%w %q", ErrBadParam, f)
		}
		cmd.Params = append(cmd.Params, Param{Key: f[:1], Value: f[1:]})
	}
	return cmd, nil
}

// Parse reads a whole program, skipping blank lines.
func Parse(r io.Reader) (Program, error) {
	var p Program
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		cmd, err := ParseLine(line)
		if errors.Is(err, ErrEmptyLine) {
			continue
		}
		if err != nil {
			return Program{}, &ParseError{Line: n, Text: line, Err: err}
		}
		p.Append(cmd)
	}
	if err := sc.Err(); err != nil {
		return Program{}, fmt.Errorf("read program: %w", err)
	}
	return p, nil
}

func validMnemonic(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !isLetter(c) && !(c >= '0' && c <= '9') && c != '_' && c != '.' {
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
