package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/ui/output"
	"go.trai.ch/cmdrule/internal/ui/style"
	"go.trai.ch/zerr"
)

// Format selects how records are listed.
type Format string

// Supported listing formats.
const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// resolveFormat maps a user-supplied format to text or JSON. Auto picks
// text on a terminal and JSON otherwise.
func resolveFormat(name string, w io.Writer) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case "", FormatAuto:
		if output.IsTerminal(w) {
			return FormatText, nil
		}
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", zerr.With(domain.ErrUnknownOutputFormat, "format", name)
	}
}

// recordView is the JSON shape of a record. Optional fields are omitted
// when absent and kept when present but empty.
type recordView struct {
	Target           string            `json:"target,omitempty"`
	Role             string            `json:"role,omitempty"`
	Outputs          []string          `json:"outputs"`
	Byproducts       []string          `json:"byproducts,omitempty"`
	Depends          []string          `json:"depends,omitempty"`
	MainDependency   *string           `json:"mainDependency,omitempty"`
	Commands         [][]string        `json:"commands"`
	WorkingDirectory string            `json:"workingDirectory,omitempty"`
	Comment          *string           `json:"comment,omitempty"`
	Depfile          string            `json:"depfile,omitempty"`
	JobPool          string            `json:"jobPool,omitempty"`
	ImplicitDepends  []implicitView    `json:"implicitDepends,omitempty"`
	Flags            map[string]bool   `json:"flags"`
	Policies         map[string]string `json:"policies"`
	Synthesized      bool              `json:"synthesized,omitempty"`
	Backtrace        []string          `json:"backtrace,omitempty"`
}

type implicitView struct {
	Path     string `json:"path"`
	Language string `json:"language"`
}

func newRecordView(cc *domain.CustomCommand) recordView {
	v := recordView{
		Target:           cc.Target(),
		Role:             cc.Role(),
		Outputs:          nonNil(cc.Outputs()),
		Byproducts:       cc.Byproducts(),
		Depends:          cc.Depends(),
		WorkingDirectory: cc.WorkingDirectory(),
		Depfile:          cc.Depfile(),
		JobPool:          cc.JobPool(),
		Flags:            make(map[string]bool),
		Policies:         make(map[string]string),
		Synthesized:      cc.Synthesized(),
	}
	if dep, ok := cc.MainDependency(); ok {
		v.MainDependency = &dep
	}
	if comment, ok := cc.Comment(); ok {
		v.Comment = &comment
	}

	v.Commands = make([][]string, 0, cc.CommandLines().Len())
	for _, line := range cc.CommandLines() {
		v.Commands = append(v.Commands, nonNil(line))
	}
	for _, dep := range cc.ImplicitDepends() {
		v.ImplicitDepends = append(v.ImplicitDepends, implicitView{Path: dep.Path, Language: dep.Language})
	}
	for _, f := range flagsOf(cc) {
		v.Flags[f.name] = f.set
	}
	for id, status := range cc.Policies().All() {
		v.Policies[id.String()] = status.String()
	}
	for frame := range cc.Backtrace().Frames() {
		v.Backtrace = append(v.Backtrace, frame.String())
	}
	return v
}

func nonNil[S ~[]string](s S) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type flag struct {
	name string
	set  bool
}

func flagsOf(cc *domain.CustomCommand) []flag {
	return []flag{
		{"escapeOldStyle", cc.EscapeOldStyle()},
		{"allowMakeVars", cc.EscapeAllowMakeVars()},
		{"usesTerminal", cc.UsesTerminal()},
		{"commandExpandLists", cc.CommandExpandLists()},
		{"stdPipesUtf8", cc.StdPipesUTF8()},
		{"dependsExplicitOnly", cc.DependsExplicitOnly()},
		{"jobserverAware", cc.JobserverAware()},
		{"codegen", cc.Codegen()},
	}
}

func writeJSON(w io.Writer, records []*domain.CustomCommand) error {
	views := make([]recordView, len(records))
	for i, cc := range records {
		views[i] = newRecordView(cc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func writeText(w io.Writer, records []*domain.CustomCommand) error {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())
	heading := style.Heading.Renderer(r)
	muted := style.Muted.Renderer(r)

	var b strings.Builder
	for i, cc := range records {
		if i > 0 {
			b.WriteByte('\n')
		}
		title := cc.Target()
		if title == "" {
			title = "(no target)"
		}
		if cc.Role() != "" {
			title += " [" + cc.Role() + "]"
		}
		b.WriteString(heading.Render(title) + "\n")

		field := func(name, value string) {
			if value != "" {
				fmt.Fprintf(&b, "  %s %s\n", muted.Render(fmt.Sprintf("%-12s", name+":")), value)
			}
		}
		field("outputs", strings.Join(cc.Outputs(), " "))
		field("byproducts", strings.Join(cc.Byproducts(), " "))
		field("depends", strings.Join(cc.Depends(), " "))
		if dep, ok := cc.MainDependency(); ok {
			field("main", fmt.Sprintf("%q", dep))
		}
		if cc.CommandLines().Len() > 0 {
			b.WriteString("  " + muted.Render("commands:") + "\n")
			for _, line := range cc.CommandLines() {
				b.WriteString("    " + strings.Join(line, " ") + "\n")
			}
		}
		field("working dir", cc.WorkingDirectory())
		if comment, ok := cc.Comment(); ok {
			field("comment", fmt.Sprintf("%q", comment))
		}
		field("depfile", cc.Depfile())
		field("job pool", cc.JobPool())

		var implicit []string
		for _, dep := range cc.ImplicitDepends() {
			implicit = append(implicit, fmt.Sprintf("%s (%s)", dep.Path, dep.Language))
		}
		field("implicit", strings.Join(implicit, " "))

		var flags []string
		for _, f := range flagsOf(cc) {
			if f.set {
				flags = append(flags, f.name)
			}
		}
		field("flags", strings.Join(flags, " "))

		var policies []string
		for id, status := range cc.Policies().All() {
			policies = append(policies, id.String()+"="+status.String())
		}
		field("policies", strings.Join(policies, " "))
		if !cc.Backtrace().Empty() {
			field("declared at", cc.Backtrace().Top().String())
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
