// Package main is the entry point for the reading service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service. "dev" defers to app.version.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "tarot-reader",
		Usage:   "tarot reading service",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "config profile loaded from configs/<profile>.yaml",
				Value:   "local",
				Sources: cli.EnvVars("APP_ENVIRONMENT"),
			},
		},
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			promptCommand(),
			configCommand(),
		},
	}
}
