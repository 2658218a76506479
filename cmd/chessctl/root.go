// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/printerchess/internal/config"
	xlog "github.com/ManuGH/printerchess/internal/log"
	"github.com/ManuGH/printerchess/internal/motion"
	"github.com/ManuGH/printerchess/internal/version"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	moonraker  string
	logLevel   string

	stdin io.Reader
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	g := &globals{stdin: stdin}

	root := &cobra.Command{
		Use:           "chessctl",
		Short:         "Turn chess games into printer moves",
		Long:          "chessctl compiles PGN or UCI games to G-code, inspects the motion plans and drives a Klipper printer through Moonraker.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(*cobra.Command, []string) {
			xlog.Configure(xlog.Config{Level: g.logLevel, Output: stderr, Service: "chessctl", Console: true})
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "path to config file (YAML)")
	pf.StringVar(&g.moonraker, "moonraker", "", "Moonraker base URL (overrides config)")
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newGCodeCmd(g),
		newPlanCmd(g),
		newValidateCmd(g),
		newPrinterCmd(g),
	)
	return root
}

func (g *globals) config() (config.AppConfig, error) {
	cfg, err := config.NewLoader(g.configPath, version.Version).Load()
	if err != nil {
		return cfg, err
	}
	if g.moonraker != "" {
		cfg.Moonraker.URL = g.moonraker
	}
	return cfg, nil
}

func (g *globals) compiler(mode string) (*motion.Compiler, config.AppConfig, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, cfg, err
	}
	if mode != "" {
		cfg.Motion.Mode = mode
	}
	c, err := motion.NewCompiler(cfg)
	return c, cfg, err
}

// gameFlags selects the game to compile.
type gameFlags struct {
	pgn   string
	moves []string
	mode  string
}

func (f *gameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pgn, "pgn", "", "PGN file to read, - for stdin")
	cmd.Flags().StringSliceVar(&f.moves, "moves", nil, "UCI moves, e.g. e2e4,e7e5")
	cmd.Flags().StringVar(&f.mode, "mode", "", "render mode: legacy or magnet (default from config)")
}

func (f *gameFlags) input(stdin io.Reader, args []string) (motion.Input, error) {
	moves := append(append([]string(nil), f.moves...), args...)
	if f.pgn == "" {
		return motion.Input{Moves: moves}, nil
	}
	if len(moves) > 0 {
		return motion.Input{}, motion.ErrAmbiguousInput
	}

	var data []byte
	var err error
	if f.pgn == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(f.pgn)
	}
	if err != nil {
		return motion.Input{}, fmt.Errorf("read pgn: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return motion.Input{}, errors.New("pgn input is empty")
	}
	return motion.Input{PGN: string(data)}, nil
}

func (g *globals) compile(f *gameFlags, args []string) (motion.Compiled, *motion.Compiler, error) {
	in, err := f.input(g.stdin, args)
	if err != nil {
		return motion.Compiled{}, nil, err
	}
	c, _, err := g.compiler(f.mode)
	if err != nil {
		return motion.Compiled{}, nil, err
	}
	out, err := c.Compile(in, f.mode)
	return out, c, err
}
