// Command portsweep is a TCP connect port scanner.
package main

import (
	"github.com/anstrom/portsweep/cmd/cli"
)

// Build information, set via -ldflags "-X main.version=..." at build time.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
