// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ManuGH/printerchess/internal/gcode"
)

func newValidateCmd(g *globals) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a G-code program for well-formedness",
		Long:  "Check a G-code program for well-formedness. Reads stdin when no file is given. Axis limits are not checked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = g.stdin
			name := "<stdin>"
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r, name = f, args[0]
			}

			rep, err := gcode.Validate(r)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, is := range rep.Issues {
				fmt.Fprintf(w, "%s:%d: %s: %s\n", name, is.Line, is.Severity, is.Message)
			}
			errs, warns := rep.Count(gcode.SeverityError), rep.Count(gcode.SeverityWarning)
			fmt.Fprintf(w, "%s: %d lines, %d commands, %d errors, %d warnings\n", name, rep.Lines, rep.Commands, errs, warns)

			if errs > 0 || (strict && warns > 0) {
				return fmt.Errorf("%s failed validation", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}
