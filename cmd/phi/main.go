// Package main is the entry point for the phi module runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/phi/cmd/phi/commands"
	"go.trai.ch/phi/internal/app"
	"go.trai.ch/phi/internal/core/domain"
	_ "go.trai.ch/phi/internal/wiring"
)

// Exit codes reported by the phi binary.
const (
	exitOK      = 0
	exitFailure = 1
	exitLoad    = 2
	exitRuntime = 3
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(phiMain())
}

func phiMain() int {
	return run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		if err != nil {
			return nil, func() {}, err
		}
		return c, c.Lifecycle.Shutdown, nil
	})
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, shutdown, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitFailure
	}
	// Every exit path, interrupted ones included, runs the shutdown hooks.
	defer shutdown()

	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		components.Logger.Error(err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps a failure to the process status. Loading failures take
// precedence over execution failures that merely propagated them.
func exitCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrReadFailed),
		errors.Is(err, domain.ErrCompileFailed):
		return exitLoad
	case errors.Is(err, domain.ErrExecutionFailed):
		return exitRuntime
	default:
		return exitFailure
	}
}
