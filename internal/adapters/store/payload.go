package store

import (
	"slices"

	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
)

type payload struct {
	Schema  uint16      `msgpack:"schema"`
	Target  string      `msgpack:"target"`
	Records []recordDTO `msgpack:"records"`
}

type frameDTO struct {
	File    string `msgpack:"file"`
	Line    int    `msgpack:"line"`
	Command string `msgpack:"command"`
}

type implicitDTO struct {
	Path     string `msgpack:"path"`
	Language string `msgpack:"language"`
}

type recordDTO struct {
	Outputs         []string          `msgpack:"outputs"`
	Byproducts      []string          `msgpack:"byproducts"`
	Depends         []string          `msgpack:"depends"`
	MainDependency  *string           `msgpack:"main_dependency"`
	CommandLines    [][]string        `msgpack:"command_lines"`
	WorkingDir      string            `msgpack:"working_dir"`
	Comment         *string           `msgpack:"comment"`
	ImplicitDepends []implicitDTO     `msgpack:"implicit_depends"`
	Backtrace       []frameDTO        `msgpack:"backtrace"` // innermost first
	Target          string            `msgpack:"target"`
	Role            string            `msgpack:"role"`
	Depfile         string            `msgpack:"depfile"`
	JobPool         string            `msgpack:"job_pool"`
	Policies        map[string]string `msgpack:"policies"`
	Synthesized     bool              `msgpack:"synthesized"`

	EscapeOldStyle      bool `msgpack:"escape_old_style"`
	EscapeAllowMakeVars bool `msgpack:"escape_allow_make_vars"`
	UsesTerminal        bool `msgpack:"uses_terminal"`
	CommandExpandLists  bool `msgpack:"command_expand_lists"`
	StdPipesUTF8        bool `msgpack:"std_pipes_utf8"`
	DependsExplicitOnly bool `msgpack:"depends_explicit_only"`
	JobserverAware      bool `msgpack:"jobserver_aware"`
	Codegen             bool `msgpack:"codegen"`
}

func optionalPtr(get func() (string, bool)) *string {
	v, ok := get()
	if !ok {
		return nil
	}
	return &v
}

func fromDomain(cc *domain.CustomCommand) recordDTO {
	dto := recordDTO{
		Outputs:             slices.Clone(cc.Outputs()),
		Byproducts:          slices.Clone(cc.Byproducts()),
		Depends:             slices.Clone(cc.Depends()),
		MainDependency:      optionalPtr(cc.MainDependency),
		WorkingDir:          cc.WorkingDirectory(),
		Comment:             optionalPtr(cc.Comment),
		Target:              cc.Target(),
		Role:                cc.Role(),
		Depfile:             cc.Depfile(),
		JobPool:             cc.JobPool(),
		Policies:            make(map[string]string),
		Synthesized:         cc.Synthesized(),
		EscapeOldStyle:      cc.EscapeOldStyle(),
		EscapeAllowMakeVars: cc.EscapeAllowMakeVars(),
		UsesTerminal:        cc.UsesTerminal(),
		CommandExpandLists:  cc.CommandExpandLists(),
		StdPipesUTF8:        cc.StdPipesUTF8(),
		DependsExplicitOnly: cc.DependsExplicitOnly(),
		JobserverAware:      cc.JobserverAware(),
		Codegen:             cc.Codegen(),
	}

	for _, line := range cc.CommandLines() {
		dto.CommandLines = append(dto.CommandLines, slices.Clone(line))
	}
	for _, dep := range cc.ImplicitDepends() {
		dto.ImplicitDepends = append(dto.ImplicitDepends, implicitDTO{Path: dep.Path, Language: dep.Language})
	}
	for f := range cc.Backtrace().Frames() {
		dto.Backtrace = append(dto.Backtrace, frameDTO{File: f.File.String(), Line: f.Line, Command: f.Command})
	}
	for id, status := range cc.Policies().All() {
		dto.Policies[id.String()] = status.String()
	}
	return dto
}

func (dto *recordDTO) toDomain() (*domain.CustomCommand, error) {
	var cc *domain.CustomCommand
	if dto.Synthesized {
		cc = domain.NewSynthesizedCommand()
	} else {
		snap, err := dto.snapshot()
		if err != nil {
			return nil, err
		}
		cc = domain.NewCustomCommand(snap)
	}

	cc.SetOutputs(dto.Outputs)
	cc.SetByproducts(dto.Byproducts)
	cc.SetDepends(dto.Depends)
	if dto.MainDependency != nil {
		cc.SetMainDependency(*dto.MainDependency)
	}

	lines := make(domain.CommandLines, 0, len(dto.CommandLines))
	for _, l := range dto.CommandLines {
		lines = append(lines, domain.NewCommandLine(l...))
	}
	cc.SetCommandLines(lines)

	cc.SetWorkingDirectory(dto.WorkingDir)
	if dto.Comment != nil {
		cc.SetComment(*dto.Comment)
	}

	deps := make(domain.ImplicitDepends, 0, len(dto.ImplicitDepends))
	for _, d := range dto.ImplicitDepends {
		deps = append(deps, domain.ImplicitDepend{Path: d.Path, Language: d.Language})
	}
	cc.SetImplicitDepends(deps)

	var bt domain.Backtrace
	for _, f := range slices.Backward(dto.Backtrace) {
		bt = bt.Push(domain.Frame{File: domain.NewInternedString(f.File), Line: f.Line, Command: f.Command})
	}
	cc.SetBacktrace(bt)

	cc.SetTarget(dto.Target)
	cc.SetRole(dto.Role)
	cc.SetDepfile(dto.Depfile)
	cc.SetJobPool(dto.JobPool)
	cc.SetEscapeOldStyle(dto.EscapeOldStyle)
	cc.SetEscapeAllowMakeVars(dto.EscapeAllowMakeVars)
	cc.SetUsesTerminal(dto.UsesTerminal)
	cc.SetCommandExpandLists(dto.CommandExpandLists)
	cc.SetStdPipesUTF8(dto.StdPipesUTF8)
	cc.SetDependsExplicitOnly(dto.DependsExplicitOnly)
	cc.SetJobserverAware(dto.JobserverAware)
	cc.SetCodegen(dto.Codegen)
	return cc, nil
}

func (dto *recordDTO) snapshot() (domain.PolicySnapshot, error) {
	var snap domain.PolicySnapshot
	for code, raw := range dto.Policies {
		id, ok := domain.LookupPolicy(code)
		if !ok {
			return snap, zerr.With(domain.ErrUnknownPolicy, "policy", code)
		}
		status, ok := domain.ParsePolicyStatus(raw)
		if !ok {
			err := zerr.With(domain.ErrInvalidPolicyStatus, "policy", code)
			return snap, zerr.With(err, "status", raw)
		}
		snap = snap.With(id, status)
	}
	return snap, nil
}
