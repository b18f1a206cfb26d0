// Package commands implements the CLI commands for cmdrule.
package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/cmdrule/internal/app"
	"go.trai.ch/cmdrule/internal/build"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for cmdrule.
type CLI struct {
	app       Application
	logs      LogFormatter
	telemetry Telemetry
	rootCmd   *cobra.Command
	dir       string
	logFmt    string
	trace     bool
}

// Application represents the application logic interface.
type Application interface {
	Inspect(ctx context.Context, cwd string, opts app.InspectOptions) error
	Emit(ctx context.Context, cwd string, opts app.EmitOptions) error
	Snapshot(ctx context.Context, cwd string) error
	Diff(ctx context.Context, cwd string) (app.DiffReport, error)
}

// LogFormatter is implemented by loggers that can switch to JSON output
// and toggle debug messages.
type LogFormatter interface {
	SetJSON(enable bool)
	SetDebug(enable bool)
}

// Telemetry starts span recording for --trace.
type Telemetry interface {
	Enable()
}

// Option configures the CLI.
type Option func(*CLI)

// WithLogFormatter lets --log-format switch the logger's encoding.
func WithLogFormatter(l LogFormatter) Option {
	return func(c *CLI) {
		c.logs = l
	}
}

// WithTelemetry lets --trace turn on span recording.
func WithTelemetry(t Telemetry) Option {
	return func(c *CLI) {
		c.telemetry = t
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cmdrule",
		Short:         "Inspect, validate and emit custom build rules",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().StringVarP(&c.dir, "dir", "C", ".", "Directory to search for rule files")
	rootCmd.PersistentFlags().StringVar(&c.logFmt, "log-format", "pretty", "Log encoding: pretty or json")
	rootCmd.PersistentFlags().BoolVar(&c.trace, "trace", false, "Log operation spans and their durations")
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if err := c.applyLogFormat(); err != nil {
			return err
		}
		c.applyTrace()
		return nil
	}

	rootCmd.AddCommand(c.newInspectCmd())
	rootCmd.AddCommand(c.newEmitCmd())
	rootCmd.AddCommand(c.newSnapshotCmd())
	rootCmd.AddCommand(c.newDiffCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) applyLogFormat() error {
	var enable bool
	switch c.logFmt {
	case "pretty":
	case "json":
		enable = true
	default:
		return zerr.With(domain.ErrUnknownLogFormat, "format", c.logFmt)
	}
	if c.logs != nil {
		c.logs.SetJSON(enable)
	}
	return nil
}

func (c *CLI) applyTrace() {
	if !c.trace {
		return
	}
	if c.logs != nil {
		c.logs.SetDebug(true)
	}
	if c.telemetry != nil {
		c.telemetry.Enable()
	}
}

// cwd returns the absolute form of --dir.
func (c *CLI) cwd() (string, error) {
	abs, err := filepath.Abs(c.dir)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", c.dir)
	}
	return abs, nil
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
