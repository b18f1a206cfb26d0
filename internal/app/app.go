// Package app implements the application layer for cmdrule.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/core/ports"
	"go.trai.ch/cmdrule/internal/engine/depgraph"
	"go.trai.ch/zerr"
)

const instrumentationName = "go.trai.ch/cmdrule"

// App represents the main application logic.
type App struct {
	loader        ports.RuleLoader
	store         ports.RecordStore
	generator     ports.Generator
	fingerprinter ports.Fingerprinter
	logger        ports.Logger
	tracer        trace.Tracer
	stdout        io.Writer
}

// New creates a new App instance.
func New(
	loader ports.RuleLoader,
	store ports.RecordStore,
	generator ports.Generator,
	fingerprinter ports.Fingerprinter,
	log ports.Logger,
) *App {
	return &App{
		loader:        loader,
		store:         store,
		generator:     generator,
		fingerprinter: fingerprinter,
		logger:        log,
		tracer:        otel.Tracer(instrumentationName),
		stdout:        os.Stdout,
	}
}

// WithOutput sets the writer that receives listings and generated files
// written to standard output.
func (a *App) WithOutput(w io.Writer) *App {
	a.stdout = w
	return a
}

// WithTracer replaces the tracer used for operation spans.
func (a *App) WithTracer(tracer trace.Tracer) *App {
	a.tracer = tracer
	return a
}

func (a *App) startSpan(ctx context.Context, name, cwd string) (context.Context, trace.Span) {
	return a.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("cmdrule.cwd", cwd)))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (a *App) load(ctx context.Context, cwd string) (*domain.RuleSet, error) {
	_, span := a.tracer.Start(ctx, "load")
	rs, err := a.loader.Load(cwd)
	if err == nil {
		span.SetAttributes(
			attribute.Int("cmdrule.records", len(rs.Commands)),
			attribute.Int("cmdrule.files", len(rs.Files)),
		)
	}
	endSpan(span, err)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load rule files")
	}
	return rs, nil
}

// InspectOptions configures Inspect.
type InspectOptions struct {
	// Format is "auto", "text" or "json".
	Format string
	// Target restricts the listing to one target when non-empty.
	Target string
}

// Inspect prints every loaded record.
func (a *App) Inspect(ctx context.Context, cwd string, opts InspectOptions) (err error) {
	ctx, span := a.startSpan(ctx, "inspect", cwd)
	defer func() { endSpan(span, err) }()

	format, err := resolveFormat(opts.Format, a.stdout)
	if err != nil {
		return err
	}

	rs, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}

	records := rs.Commands
	if opts.Target != "" {
		records = rs.ForTarget(opts.Target)
	}
	span.SetAttributes(attribute.String("cmdrule.format", string(format)))

	if format == FormatJSON {
		return writeJSON(a.stdout, records)
	}
	return writeText(a.stdout, records)
}

// EmitOptions configures Emit.
type EmitOptions struct {
	// Output is the file to write; "" or "-" writes to standard output.
	// Relative paths are resolved against the rule root.
	Output string
}

// Emit validates the records through the dependency graph and writes a
// Ninja file in dependency order.
func (a *App) Emit(ctx context.Context, cwd string, opts EmitOptions) (err error) {
	ctx, span := a.startSpan(ctx, "emit", cwd)
	defer func() { endSpan(span, err) }()

	rs, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}

	g := depgraph.New()
	for _, cc := range rs.Commands {
		if err := g.Add(cc); err != nil {
			return err
		}
	}
	for _, warning := range g.Warnings() {
		a.logger.Warn(warning)
	}
	if err := g.Validate(); err != nil {
		return err
	}
	ordered, err := g.Ordered()
	if err != nil {
		return err
	}
	plan := domain.BuildPlan{
		Rules:   ordered,
		Codegen: slices.Collect(g.CodegenRules()),
	}
	span.SetAttributes(
		attribute.Int("cmdrule.rules", len(plan.Rules)),
		attribute.Int("cmdrule.codegen_rules", len(plan.Codegen)),
	)

	if opts.Output == "" || opts.Output == "-" {
		return a.generator.Generate(ctx, a.stdout, plan)
	}

	path := opts.Output
	if !filepath.IsAbs(path) {
		path = filepath.Join(rs.Root, path)
	}
	if err := writeFileAtomic(path, func(w io.Writer) error {
		return a.generator.Generate(ctx, w, plan)
	}); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("wrote %d rules to %s", len(ordered), opts.Output))
	return nil
}

// Snapshot stores the current records of every target.
func (a *App) Snapshot(ctx context.Context, cwd string) (err error) {
	ctx, span := a.startSpan(ctx, "snapshot", cwd)
	defer func() { endSpan(span, err) }()

	rs, err := a.load(ctx, cwd)
	if err != nil {
		return err
	}

	targets := rs.Targets()
	for _, target := range targets {
		if err := a.store.Put(rs.Root, target, rs.ForTarget(target)); err != nil {
			return zerr.With(err, "target", target)
		}
	}
	span.SetAttributes(attribute.Int("cmdrule.targets", len(targets)))
	a.logger.Info(fmt.Sprintf("snapshot of %d rules across %d targets saved", len(rs.Commands), len(targets)))
	return nil
}

// writeFileAtomic writes through a temporary file in the destination
// directory and renames it into place.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "path", path)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "path", path)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrGenerateFailed.Error()), "path", path)
	}
	return nil
}
