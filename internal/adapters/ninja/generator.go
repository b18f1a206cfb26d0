// Package ninja renders custom commands as Ninja build statements.
package ninja

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const (
	fileHeader      = "# This file is generated by cmdrule. Do not edit.\n\nninja_required_version = 1.5\n"
	serialPool      = "custom_command_serial"
	consolePool     = "console"
	codegenTarget   = "codegen"
	ruleNamePattern = "custom_command_%d"
	noopCommand     = ":"
)

// Generator implements ports.Generator for Ninja.
type Generator struct{}

// NewGenerator creates a new Ninja generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders one rule and build statement per rule of the plan. Rules
// are rendered concurrently and written in plan order. The plan's codegen
// rules are collected into a phony codegen target.
func (g *Generator) Generate(ctx context.Context, w io.Writer, plan domain.BuildPlan) error {
	records := plan.Rules
	chunks := make([]string, len(records))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, cc := range records {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			chunk, err := renderRecord(i, cc)
			if err != nil {
				return err
			}
			chunks[i] = chunk
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return zerr.Wrap(err, domain.ErrGenerateFailed.Error())
	}

	var b strings.Builder
	b.WriteString(fileHeader)
	if slices.ContainsFunc(records, usesSerialPool) {
		fmt.Fprintf(&b, "\npool %s\n  depth = 1\n", serialPool)
	}
	for _, chunk := range chunks {
		b.WriteByte('\n')
		b.WriteString(chunk)
	}

	var codegen []string
	for _, cc := range plan.Codegen {
		i := slices.Index(records, cc)
		if i < 0 {
			return zerr.With(domain.ErrGenerateFailed, "codegen_rule", label(cc))
		}
		codegen = append(codegen, buildOutputs(i, cc)...)
	}
	if len(codegen) > 0 {
		fmt.Fprintf(&b, "\nbuild %s: phony %s\n", codegenTarget, joinPaths(codegen))
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return zerr.Wrap(err, domain.ErrGenerateFailed.Error())
	}
	return nil
}

func renderRecord(i int, cc *domain.CustomCommand) (string, error) {
	if cc == nil {
		return "", zerr.With(domain.ErrGenerateFailed, "index", i)
	}
	name := fmt.Sprintf(ruleNamePattern, i)

	var b strings.Builder
	b.WriteString("# " + name)
	if details := describe(cc); details != "" {
		b.WriteString(": " + details)
	}
	b.WriteByte('\n')
	if !cc.Backtrace().Empty() {
		fmt.Fprintf(&b, "# declared at %s\n", cc.Backtrace().Top())
	}

	fmt.Fprintf(&b, "rule %s\n", name)
	fmt.Fprintf(&b, "  command = %s\n", escapeCommand(shellCommand(cc), cc.EscapeAllowMakeVars()))
	if comment, ok := cc.Comment(); ok {
		fmt.Fprintf(&b, "  description = %s\n", escapeValue(comment))
	}
	if depfile := depfilePath(cc); depfile != "" {
		fmt.Fprintf(&b, "  depfile = %s\n", escapeValue(depfile))
	}
	if pool := poolFor(cc); pool != "" {
		fmt.Fprintf(&b, "  pool = %s\n", pool)
	}
	if len(cc.Byproducts()) > 0 {
		b.WriteString("  restat = 1\n")
	}

	b.WriteString("build " + joinPaths(buildOutputs(i, cc)))
	if len(cc.Byproducts()) > 0 {
		b.WriteString(" | " + joinPaths(cc.Byproducts()))
	}
	b.WriteString(": " + name)
	if explicit := explicitInputs(cc); len(explicit) > 0 {
		b.WriteString(" " + joinPaths(explicit))
	}
	if implicit := implicitInputs(cc); len(implicit) > 0 {
		b.WriteString(" | " + joinPaths(implicit))
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func describe(cc *domain.CustomCommand) string {
	var parts []string
	if cc.Target() != "" {
		parts = append(parts, "target "+cc.Target())
	}
	if cc.Role() != "" {
		parts = append(parts, "role "+cc.Role())
	}
	if langs := scannedLanguages(cc); len(langs) > 0 {
		parts = append(parts, "scans "+strings.Join(langs, " "))
	}
	return strings.Join(parts, ", ")
}

// scannedLanguages returns the languages whose scanners contributed implicit
// inputs to the build statement.
func scannedLanguages(cc *domain.CustomCommand) []string {
	if cc.DependsExplicitOnly() {
		return nil
	}
	return cc.ImplicitDepends().Languages()
}

// shellCommand joins the command lines with && and prefixes a cd into the
// working directory when one is set. Invocations without arguments are
// skipped; a rule left with nothing to run gets a no-op command.
func shellCommand(cc *domain.CustomCommand) string {
	oldStyle, makeVars := cc.EscapeOldStyle(), cc.EscapeAllowMakeVars()

	lines := make([]string, 0, cc.CommandLines().Len()+1)
	if dir := cc.WorkingDirectory(); dir != "" {
		lines = append(lines, "cd "+quoteArgument(dir, oldStyle, false))
	}
	commands := 0
	for _, line := range cc.CommandLines() {
		args := make([]string, 0, len(line))
		for _, arg := range line {
			tokens := []string{arg}
			if cc.CommandExpandLists() {
				tokens = expandList(arg)
			}
			for _, tok := range tokens {
				args = append(args, quoteArgument(tok, oldStyle, makeVars))
			}
		}
		if len(args) == 0 {
			continue
		}
		commands++
		lines = append(lines, strings.Join(args, " "))
	}
	if commands == 0 {
		lines = append(lines, noopCommand)
	}
	return strings.Join(lines, " && ")
}

// depfilePath returns the depfile as Ninja sees it. Under the NEW depfile
// policy a relative depfile is interpreted relative to the working directory.
func depfilePath(cc *domain.CustomCommand) string {
	depfile := cc.Depfile()
	if depfile == "" {
		return ""
	}
	dir := cc.WorkingDirectory()
	if cc.PolicyStatus(domain.PolicyDepfileTransform) == domain.PolicyOld ||
		dir == "" || filepath.IsAbs(depfile) {
		return depfile
	}
	return filepath.Join(dir, depfile)
}

// poolFor picks the job pool: an explicit pool wins over the console, and
// the serial pool applies only when nothing else was chosen.
func poolFor(cc *domain.CustomCommand) string {
	switch {
	case cc.JobPool() != "":
		return cc.JobPool()
	case cc.UsesTerminal():
		return consolePool
	case cc.PolicyStatus(domain.PolicyParallelCommands) == domain.PolicyOld:
		return serialPool
	default:
		return ""
	}
}

func usesSerialPool(cc *domain.CustomCommand) bool {
	return cc != nil && poolFor(cc) == serialPool
}

// buildOutputs returns the outputs, or a symbolic output named after the
// rule when the record declares none.
func buildOutputs(i int, cc *domain.CustomCommand) []string {
	if len(cc.Outputs()) == 0 {
		return []string{fmt.Sprintf(ruleNamePattern, i)}
	}
	return cc.Outputs()
}

func label(cc *domain.CustomCommand) string {
	switch {
	case len(cc.Outputs()) > 0:
		return cc.Outputs()[0]
	case len(cc.Byproducts()) > 0:
		return cc.Byproducts()[0]
	default:
		return cc.Target()
	}
}

func explicitInputs(cc *domain.CustomCommand) []string {
	var in []string
	if dep, ok := cc.MainDependency(); ok && dep != "" {
		in = append(in, dep)
	}
	for _, dep := range cc.Depends() {
		if !slices.Contains(in, dep) {
			in = append(in, dep)
		}
	}
	return in
}

func implicitInputs(cc *domain.CustomCommand) []string {
	if cc.DependsExplicitOnly() {
		return nil
	}
	var in []string
	for _, p := range cc.ImplicitDepends().Paths() {
		if !slices.Contains(in, p) {
			in = append(in, p)
		}
	}
	return in
}

func joinPaths(paths []string) string {
	escaped := make([]string, len(paths))
	for i, p := range paths {
		escaped[i] = escapePath(p)
	}
	return strings.Join(escaped, " ")
}
