// Package version provides build version information.
package version

import (
	"fmt"
	"runtime"
)

// Version, Commit and Date are set at build time via ldflags, e.g.
//
//	go build -ldflags "-X github.com/ctagard/inspect/internal/version.Version=0.2.0"
var (
	Version = "0.1.0"
	Commit  = "none"
	Date    = "unknown"
)

// GetVersion returns the current version
func GetVersion() string {
	return Version
}

// String returns the full version line printed by `inspect version`.
func String() string {
	return fmt.Sprintf("inspect version %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
