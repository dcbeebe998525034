// Nabotix - command-line client for the Nabotix research data sharing platform
package main

import (
	"os"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/cli"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/version"
)

// Version information, overridden with -ldflags "-X main.Version=..."
var (
	Version   = "v0.3.0-dev"
	BuildTime = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
