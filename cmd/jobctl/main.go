// Package main provides the entry point for jobctl.
//
// jobctl manages jobs on a remote node: list, create, delete, and
// trigger-and-wait runs, with a cached login session between
// invocations.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nodeops/jobctl/internal/cli/command"
	"github.com/nodeops/jobctl/internal/core/domain"
	"github.com/nodeops/jobctl/internal/infra/shutdown"
)

func main() {
	// Ctrl-C cancels an in-flight poll loop cleanly.
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	app := command.App()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(domain.ExitCode(err))
	}
}
