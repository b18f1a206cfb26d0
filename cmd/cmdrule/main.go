// Package main is the entry point for the cmdrule tool.
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
	"go.trai.ch/cmdrule/cmd/cmdrule/commands"
	"go.trai.ch/cmdrule/internal/app"
	"go.trai.ch/cmdrule/internal/core/domain"
	_ "go.trai.ch/cmdrule/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	var opts []commands.Option
	if lf, ok := components.Logger.(commands.LogFormatter); ok {
		opts = append(opts, commands.WithLogFormatter(lf))
	}

	if components.Telemetry != nil {
		opts = append(opts, commands.WithTelemetry(components.Telemetry))
		defer func() {
			if err := components.Telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
				components.Logger.Error(err)
			}
		}()
	}

	cli := commands.New(components.App, opts...)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrRulesChanged) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
