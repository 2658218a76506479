// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ManuGH/printerchess/internal/motion"
)

type planOutput struct {
	Mode      string            `json:"mode"`
	Units     string            `json:"units"`
	Layout    string            `json:"layout"`
	Outcome   string            `json:"outcome"`
	Reason    string            `json:"reason,omitempty"`
	Tags      map[string]string `json:"tags,omitempty"`
	Fallbacks int               `json:"fallbacks"`
	Plans     []motion.Plan     `json:"plans"`
}

func newPlanCmd(g *globals) *cobra.Command {
	var (
		game  gameFlags
		units string
	)
	cmd := &cobra.Command{
		Use:   "plan [uci-move...]",
		Short: "Print the magnet motion plans of a game as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, c, err := g.compile(&game, args)
			if err != nil {
				return err
			}
			plans := out.Plans
			switch units {
			case "mm":
				plans = make([]motion.Plan, len(out.Plans))
				for i, p := range out.Plans {
					plans[i] = p.InMM(c.Layout)
				}
			case "board":
			default:
				return fmt.Errorf("unknown units %q (use mm or board)", units)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(planOutput{
				Mode:      out.Mode,
				Units:     units,
				Layout:    c.Layout.Name(),
				Outcome:   out.Game.Outcome,
				Reason:    out.Game.Reason,
				Tags:      out.Game.Tags,
				Fallbacks: out.Fallbacks(),
				Plans:     plans,
			})
		},
	}
	game.register(cmd)
	cmd.Flags().StringVar(&units, "units", "mm", "coordinate units: mm or board")
	return cmd
}
