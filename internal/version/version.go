// Package version carries build metadata injected via ldflags.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/ManuGH/printerchess/internal/version.Version=...".
var (
	Version = "v0.1.0-dev"
	Commit  = ""
	Date    = ""
)

// String renders version, commit and build date on one line. Without
// ldflags the commit and date come from the VCS stamp of `go build`.
func String() string {
	commit, date := Commit, Date
	if commit == "" || date == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				switch {
				case s.Key == "vcs.revision" && commit == "":
					commit = s.Value
				case s.Key == "vcs.time" && date == "":
					date = s.Value
				}
			}
		}
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	return fmt.Sprintf("%s (commit %s, built %s)", Version, orUnknown(commit), orUnknown(date))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
