// SPDX-License-Identifier: MIT

// Command chessctl compiles chess games to G-code and drives a Moonraker
// printer directly, without the daemon.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
