/*
Package main is the entry point for the usagelog CLI.

usagelog records usage events (a file processed in an application tab, the
entities a detector found in it, and the ones the user kept) and infers
which entities each tab's users habitually select.

Usage:
  usagelog [command]

Available Commands:
  serve        Run the HTTP server
  logs         List recorded usage events
  preferences  Show the preferred entities for a tab
  verify       Verify configuration and connections
  init         Write a default configuration file
  version      Show version information

Examples:
  # Serve on :5000 with the default SQLite store
  usagelog serve

  # Inspect the redact-image history
  usagelog logs --tab redact-image
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/atupatu/pccoe/internal/cli"
	"github.com/atupatu/pccoe/internal/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "dev"
	commit       = "none"
	date         = "unknown"
)

func main() {
	version.Version, version.Commit, version.Date = buildVersion, commit, date

	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
