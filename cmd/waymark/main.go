// Command waymark is the thin entrypoint wiring cobra's command tree
// (internal/cli) into fang for polished help/error rendering, per
// SPEC_FULL.md §1.1's ambient CLI stack.
package main

import (
	"context"
	"os"

	"github.com/waymark/waymark/internal/cli"
	"github.com/charmbracelet/fang"
)

// buildVersion, buildCommit and buildDate are set at build time via
// -ldflags "-X main.buildVersion=... -X main.buildCommit=... -X main.buildDate=...".
var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

func main() {
	cli.Version = buildVersion
	cli.GitCommit = buildCommit
	cli.BuildDate = buildDate

	if err := fang.Execute(context.Background(), cli.RootCmd); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
