// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuGH/printerchess/internal/health"
)

// runHealthcheckCLI probes a running daemon and exits non-zero unless it is
// ready (or, with -live, merely alive). The container image has no curl.
func runHealthcheckCLI(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("healthcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	base := fs.String("url", "http://127.0.0.1:8088", "daemon base URL")
	live := fs.Bool("live", false, "check liveness instead of readiness")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	probe := "/readyz"
	if *live {
		probe = "/healthz"
	}
	client := &http.Client{Timeout: *timeout}
	resp, err := client.Get(strings.TrimRight(*base, "/") + probe)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: %v\n", err)
		return 1
	}
	defer func() { _ = resp.Body.Close() }()

	var body struct {
		Status health.Status `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(stderr, "healthcheck: %s answered %d (%s)\n", probe, resp.StatusCode, body.Status)
		return 1
	}
	fmt.Fprintf(stdout, "%s %s\n", probe, body.Status)
	return 0
}
