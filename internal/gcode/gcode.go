// SPDX-License-Identifier: MIT

// Package gcode models the small G-code dialect printerchess emits: one
// command per line, word-style parameters (X150.0) for G/M codes and
// KEY=VALUE parameters for Klipper extended commands, optional "; comment".
package gcode

import (
	"io"
	"strings"
)

// Param is a single command parameter.
type Param struct {
	Key   string
	Value string
}

// Command is one line of a program. An empty Mnemonic makes it a
// comment-only line.
type Command struct {
	Mnemonic string
	Params   []Param
	Comment  string
	Extended bool // Klipper style KEY=VALUE parameters
}

// IsComment reports whether c carries no instruction.
func (c Command) IsComment() bool {
	return c.Mnemonic == ""
}

// String renders the command without a line terminator.
func (c Command) String() string {
	var b strings.Builder
	c.write(&b)
	return b.String()
}

func (c Command) write(b *strings.Builder) {
	if c.IsComment() {
		b.WriteString("; ")
		b.WriteString(c.Comment)
		return
	}
	b.WriteString(c.Mnemonic)
	for _, p := range c.Params {
		b.WriteByte(' ')
		b.WriteString(p.Key)
		if c.Extended {
			b.WriteByte('=')
		}
		b.WriteString(p.Value)
	}
	if c.Comment != "" {
		b.WriteString(" ; ")
		b.WriteString(c.Comment)
	}
}

// WithComment returns a copy of c carrying the given comment.
func (c Command) WithComment(comment string) Command {
	c.Comment = comment
	return c
}

// Param returns the value of the named parameter.
func (c Command) Param(key string) (string, bool) {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Program is an ordered list of commands.
type Program struct {
	Lines []Command
}

// Append adds commands to the end of the program.
func (p *Program) Append(cmds ...Command) {
	p.Lines = append(p.Lines, cmds...)
}

// Len returns the number of lines, comments included.
func (p Program) Len() int {
	return len(p.Lines)
}

// Commands returns the number of executable (non-comment) lines.
func (p Program) Commands() int {
	n := 0
	for _, c := range p.Lines {
		if !c.IsComment() {
			n++
		}
	}
	return n
}

// String renders the program, every line terminated by "\n".
func (p Program) String() string {
	var b strings.Builder
	for _, c := range p.Lines {
		c.write(&b)
		b.WriteByte('\n')
	}
	return b.String()
}

// WriteTo implements io.WriterTo.
func (p Program) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, p.String())
	return int64(n), err
}
