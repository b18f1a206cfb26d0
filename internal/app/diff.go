package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.opentelemetry.io/otel/attribute"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/ui/output"
	"go.trai.ch/cmdrule/internal/ui/style"
	"go.trai.ch/zerr"
)

// ChangeKind classifies a difference between stored and current records.
type ChangeKind int

// Kinds of change.
const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeModified
)

// Change is one rule that differs from the snapshot.
type Change struct {
	Kind   ChangeKind
	Target string
	// Rule identifies the record within its target.
	Rule string
}

// DiffReport lists the differences between the snapshot and the current rules.
type DiffReport struct {
	Changes []Change
}

// Empty reports whether nothing changed.
func (r DiffReport) Empty() bool {
	return len(r.Changes) == 0
}

// Diff compares the current records against the stored snapshot and prints
// the rules that were added, removed or changed.
func (a *App) Diff(ctx context.Context, cwd string) (report DiffReport, err error) {
	ctx, span := a.startSpan(ctx, "diff", cwd)
	defer func() { endSpan(span, err) }()

	rs, err := a.load(ctx, cwd)
	if err != nil {
		return DiffReport{}, err
	}

	for _, target := range rs.Targets() {
		stored, err := a.store.Get(rs.Root, target)
		if err != nil {
			return DiffReport{}, zerr.With(err, "target", target)
		}
		report.Changes = append(report.Changes, a.diffTarget(target, stored, rs.ForTarget(target))...)
	}
	span.SetAttributes(attribute.Int("cmdrule.changes", len(report.Changes)))

	if err := writeDiff(a.stdout, report); err != nil {
		return DiffReport{}, err
	}
	return report, nil
}

func (a *App) diffTarget(target string, stored, current []*domain.CustomCommand) []Change {
	before := a.index(stored)
	after := a.index(current)

	var changes []Change
	for _, key := range after.keys {
		prev, ok := before.prints[key]
		switch {
		case !ok:
			changes = append(changes, Change{Kind: ChangeAdded, Target: target, Rule: key})
		case prev != after.prints[key]:
			changes = append(changes, Change{Kind: ChangeModified, Target: target, Rule: key})
		}
	}
	for _, key := range before.keys {
		if _, ok := after.prints[key]; !ok {
			changes = append(changes, Change{Kind: ChangeRemoved, Target: target, Rule: key})
		}
	}
	return changes
}

type fingerprintIndex struct {
	keys   []string
	prints map[string]string
}

// index maps each record's identity to its fingerprint, preserving order.
func (a *App) index(records []*domain.CustomCommand) fingerprintIndex {
	idx := fingerprintIndex{prints: make(map[string]string, len(records))}
	for i, cc := range records {
		key := ruleKey(i, cc)
		idx.keys = append(idx.keys, key)
		idx.prints[key] = a.fingerprinter.Fingerprint(cc)
	}
	return idx
}

// ruleKey identifies a record by its first output, then its first
// byproduct, then its position.
func ruleKey(i int, cc *domain.CustomCommand) string {
	switch {
	case len(cc.Outputs()) > 0:
		return cc.Outputs()[0]
	case len(cc.Byproducts()) > 0:
		return cc.Byproducts()[0]
	default:
		return "#" + strconv.Itoa(i)
	}
}

func writeDiff(w io.Writer, report DiffReport) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())

	if report.Empty() {
		_, err := io.WriteString(w, style.Muted.Renderer(r).Render(style.Check+" rules match the snapshot")+"\n")
		return err
	}

	var b strings.Builder
	for _, c := range report.Changes {
		var line string
		switch c.Kind {
		case ChangeAdded:
			line = style.Added.Renderer(r).Render(style.Plus + " " + c.Target + ": " + c.Rule)
		case ChangeRemoved:
			line = style.Removed.Renderer(r).Render(style.Minus + " " + c.Target + ": " + c.Rule)
		default:
			line = style.Changed.Renderer(r).Render(style.Tilde + " " + c.Target + ": " + c.Rule)
		}
		b.WriteString(line + "\n")
	}
	fmt.Fprintf(&b, "%d rules changed\n", len(report.Changes))

	_, err := io.WriteString(w, b.String())
	return err
}
