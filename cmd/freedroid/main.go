// FreeDroid - browse and move files on Android devices over adb.
package main

import (
	"os"

	"github.com/freedroid/freedroid/internal/cli"
	"github.com/freedroid/freedroid/internal/version"
)

// Set by ldflags: -X main.Version=... -X main.BuildTime=...
var (
	Version   = ""
	BuildTime = ""
)

func main() {
	// Propagate build info to the single source of truth
	if Version != "" {
		version.Version = Version
	}
	if BuildTime != "" {
		version.BuildTime = BuildTime
	}

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
