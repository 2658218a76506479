// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/printerchess/internal/gcode"
)

func newGCodeCmd(g *globals) *cobra.Command {
	var (
		game   gameFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "gcode [uci-move...]",
		Short: "Compile a game to a G-code program",
		Long: `Compile a game to G-code. The game comes from --pgn, --moves or the
positional arguments. The program is written to stdout unless -o is given,
in which case the file is replaced atomically.`,
		Example: `  chessctl gcode e2e4 e7e5 g1f3 b8c6
  chessctl gcode --pgn game.pgn --mode magnet -o game.gcode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _, err := g.compile(&game, args)
			if err != nil {
				return err
			}
			if output == "" {
				_, err := out.Program.WriteTo(cmd.OutOrStdout())
				return err
			}
			if err := gcode.WriteFile(output, out.Program); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d commands for %d plies to %s\n",
				out.Program.Commands(), len(out.Game.Plies), output)
			return nil
		},
	}
	game.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
