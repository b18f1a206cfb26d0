// Package config provides the rule-file loader for cmdrule.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/cmdrule/internal/core/ports"
	"go.trai.ch/cmdrule/internal/engine/policy"
	"go.trai.ch/zerr"
)

// Command names recorded in backtrace frames.
const (
	ruleCommand         = "rule"
	subdirectoryCommand = "subdirectory"
)

// Loader implements ports.RuleLoader using YAML or TOML rule files.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds the nearest rule file at or above cwd and evaluates it together
// with every subdirectory it names.
func (l *Loader) Load(cwd string) (*domain.RuleSet, error) {
	if abs, err := filepath.Abs(cwd); err == nil {
		cwd = abs
	}
	path, err := findRulefile(cwd)
	if err != nil {
		return nil, err
	}

	ev := &evaluation{
		logger:   l.Logger,
		root:     filepath.Dir(path),
		state:    policy.NewState(),
		visiting: make(map[string]bool),
		rules:    &domain.RuleSet{Root: filepath.Dir(path)},
	}
	if err := ev.evalFile(path, domain.Backtrace{}); err != nil {
		return nil, err
	}
	return ev.rules, nil
}

// findRulefile walks up from cwd and returns the first rule file found.
// YAML wins over TOML in the same directory.
func findRulefile(cwd string) (string, error) {
	currentDir := cwd
	for {
		if path, ok := rulefileIn(currentDir); ok {
			return path, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}
	return "", zerr.With(domain.ErrConfigNotFound, "cwd", cwd)
}

func rulefileIn(dir string) (string, bool) {
	for _, name := range domain.RuleFileNames() {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// evaluation holds the state of one Load call.
type evaluation struct {
	logger   ports.Logger
	root     string
	state    *policy.State
	visiting map[string]bool
	rules    *domain.RuleSet
}

func (ev *evaluation) evalFile(path string, bt domain.Backtrace) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if ev.visiting[abs] {
		return zerr.With(domain.ErrSubdirectoryCycle, "file", ev.rel(path))
	}
	ev.visiting[abs] = true
	defer delete(ev.visiting, abs)

	parsed, err := readRulefile(path)
	if err != nil {
		return err
	}

	relFile := ev.rel(path)
	relDir := filepath.Dir(relFile)
	ev.rules.Files = append(ev.rules.Files, relFile)

	rf := &parsed.rulefile
	if rf.Version != "" && rf.Version != domain.RulefileSchemaVersion {
		return zerr.With(zerr.With(domain.ErrUnsupportedSchemaVersion, "version", rf.Version), "file", relFile)
	}
	if err := ev.applyPolicies(rf, relFile); err != nil {
		return err
	}

	file := domain.NewInternedString(relFile)
	for i := range rf.Rules {
		frame := domain.Frame{File: file, Line: parsed.ruleLine(i), Command: ruleCommand}
		cc := buildCommand(&rf.Rules[i], ev.state.Scope(), relDir)
		cc.SetBacktrace(bt.Push(frame))
		ev.rules.Commands = append(ev.rules.Commands, cc)
	}

	for i, dir := range rf.Subdirectories {
		if err := ev.evalSubdirectory(path, dir, bt.Push(domain.Frame{
			File:    file,
			Line:    parsed.subdirLine(i),
			Command: subdirectoryCommand,
		})); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluation) evalSubdirectory(parentPath, dir string, bt domain.Backtrace) error {
	subDir := filepath.Join(filepath.Dir(parentPath), dir)
	subPath, ok := rulefileIn(subDir)
	if !ok {
		ev.logger.Warn(fmt.Sprintf("no rule file in subdirectory %s, skipping", ev.rel(subDir)))
		return nil
	}

	ev.state.PushScope()
	err := ev.evalFile(subPath, bt)
	if popErr := ev.state.PopScope(); popErr != nil && err == nil {
		err = popErr
	}
	return err
}

// applyPolicies resolves minimumVersion first, then explicit overrides in
// sorted key order.
func (ev *evaluation) applyPolicies(rf *Rulefile, relFile string) error {
	switch {
	case rf.MinimumVersion != "":
		v, err := policy.ParseVersion(rf.MinimumVersion)
		if err != nil {
			return zerr.With(err, "file", relFile)
		}
		if err := ev.state.SetMinimumVersion(v); err != nil {
			return zerr.With(err, "file", relFile)
		}
	case ev.state.Depth() == 1:
		ev.logger.Warn(fmt.Sprintf("no minimumVersion declared in %s, all policies use NEW behavior", relFile))
	}

	keys := make([]string, 0, len(rf.Policies))
	for k := range rf.Policies {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		id, ok := domain.LookupPolicy(key)
		if !ok {
			err := zerr.With(domain.ErrUnknownPolicy, "policy", key)
			return zerr.With(err, "file", relFile)
		}
		status, ok := domain.ParsePolicyStatus(rf.Policies[key])
		if !ok {
			err := zerr.With(domain.ErrInvalidPolicyStatus, "policy", key)
			err = zerr.With(err, "status", rf.Policies[key])
			return zerr.With(err, "file", relFile)
		}
		if err := ev.state.SetPolicy(id, status); err != nil {
			return zerr.With(err, "file", relFile)
		}
	}
	return nil
}

func (ev *evaluation) rel(path string) string {
	rel, err := filepath.Rel(ev.root, path)
	if err != nil {
		return path
	}
	return rel
}

// buildCommand converts a rule DTO into a custom command. Relative paths in
// subdirectory rule files are rebased onto the root directory.
func buildCommand(dto *RuleDTO, scope domain.PolicyResolver, relDir string) *domain.CustomCommand {
	cc := domain.NewCustomCommand(scope)

	cc.SetTarget(dto.Target)
	cc.SetRole(dto.Role)
	cc.SetOutputs(rebasePaths(dto.Outputs, relDir))
	cc.SetByproducts(rebasePaths(dto.Byproducts, relDir))
	cc.SetDepends(rebasePaths(dto.Depends, relDir))
	if dto.MainDependency != nil {
		cc.SetMainDependency(rebasePath(*dto.MainDependency, relDir))
	}

	lines := make(domain.CommandLines, 0, len(dto.Commands))
	for _, argv := range dto.Commands {
		lines = append(lines, domain.NewCommandLine(argv...))
	}
	cc.SetCommandLines(lines)

	switch {
	case dto.WorkingDirectory != "":
		cc.SetWorkingDirectory(rebasePath(dto.WorkingDirectory, relDir))
	case relDir != ".":
		cc.SetWorkingDirectory(relDir)
	}
	if dto.Comment != nil {
		cc.SetComment(*dto.Comment)
	}
	if dto.Depfile != "" {
		cc.SetDepfile(dto.Depfile)
	}
	cc.SetJobPool(dto.JobPool)

	implicit := make(domain.ImplicitDepends, 0, len(dto.ImplicitDepends))
	for _, dep := range dto.ImplicitDepends {
		implicit = append(implicit, domain.ImplicitDepend{
			Path:     rebasePath(dep.Path, relDir),
			Language: dep.Language,
		})
	}
	cc.SetImplicitDepends(implicit)

	cc.SetEscapeOldStyle(!dto.Verbatim)
	cc.SetEscapeAllowMakeVars(dto.AllowMakeVars)
	cc.SetUsesTerminal(dto.UsesTerminal)
	cc.SetCommandExpandLists(dto.CommandExpandLists)
	cc.SetStdPipesUTF8(dto.StdPipesUTF8)
	cc.SetDependsExplicitOnly(dto.DependsExplicitOnly)
	cc.SetJobserverAware(dto.JobserverAware)
	cc.SetCodegen(dto.Codegen)
	return cc
}

func rebasePaths(paths []string, relDir string) []string {
	if len(paths) == 0 {
		return nil
	}
	rebased := make([]string, len(paths))
	for i, p := range paths {
		rebased[i] = rebasePath(p, relDir)
	}
	return rebased
}

func rebasePath(p, relDir string) string {
	if relDir == "." || p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(relDir, p)
}
