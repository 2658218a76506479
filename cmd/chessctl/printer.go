// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ManuGH/printerchess/internal/board"
	"github.com/ManuGH/printerchess/internal/jobs"
	"github.com/ManuGH/printerchess/internal/moonraker"
)

func newPrinterCmd(g *globals) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "printer",
		Short: "Send manual commands to the printer through Moonraker",
	}
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "overall deadline for the command")

	// run builds a bridge from config and calls fn under the deadline.
	run := func(cmd *cobra.Command, fn func(context.Context, *jobs.Bridge) error) error {
		c, cfg, err := g.compiler("")
		if err != nil {
			return err
		}
		client := moonraker.NewFromConfig(cfg.Moonraker)
		bridge := jobs.NewBridge(client, c, nil)

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		return fn(ctx, bridge)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "home",
			Short: "Enable motors and home X and Y",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, func(ctx context.Context, b *jobs.Bridge) error { return b.Home(ctx) })
			},
		},
		&cobra.Command{
			Use:   "goto X Y",
			Short: "Move the head to machine coordinates in mm",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				x, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("invalid X %q: %w", args[0], err)
				}
				y, err := strconv.ParseFloat(args[1], 64)
				if err != nil {
					return fmt.Errorf("invalid Y %q: %w", args[1], err)
				}
				return run(cmd, func(ctx context.Context, b *jobs.Bridge) error { return b.Goto(ctx, x, y) })
			},
		},
		&cobra.Command{
			Use:       "magnet on|off",
			Short:     "Switch the magnet",
			Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{"on", "off"},
			RunE: func(cmd *cobra.Command, args []string) error {
				on := args[0] == "on"
				return run(cmd, func(ctx context.Context, b *jobs.Bridge) error { return b.Magnet(ctx, on) })
			},
		},
		&cobra.Command{
			Use:   "move FROM TO",
			Short: "Carry one piece between two squares, e.g. move e2 e4",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				from, err := board.ParseSquare(args[0])
				if err != nil {
					return err
				}
				to, err := board.ParseSquare(args[1])
				if err != nil {
					return err
				}
				return run(cmd, func(ctx context.Context, b *jobs.Bridge) error { return b.MovePiece(ctx, from, to) })
			},
		},
		&cobra.Command{
			Use:   "estop",
			Short: "Emergency stop the printer",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, func(ctx context.Context, b *jobs.Bridge) error { return b.EmergencyStop(ctx) })
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print printer state as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd, func(ctx context.Context, b *jobs.Bridge) error {
					st, err := b.Status(ctx)
					if err != nil {
						return err
					}
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(st)
				})
			},
		},
	)
	return cmd
}
