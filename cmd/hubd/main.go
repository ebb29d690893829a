// Command hubd runs the artifact hub server and its operational
// subcommands (init, serve, migrate, gc).
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/hubd/cmd/hubd/commands"

	// Import prometheus metrics to register init() functions.
	_ "github.com/marmos91/hubd/pkg/metrics/prometheus"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
