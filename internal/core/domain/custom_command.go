// Package domain contains the core model of a custom build rule: the
// CustomCommand aggregate, its command lines, implicit dependencies,
// policy snapshot and provenance.
package domain

import "slices"

// CustomCommand describes one custom build rule: run these command lines,
// with these working directory, escaping, terminal and job-pool semantics,
// producing these outputs from these inputs.
//
// A CustomCommand is populated by the authoring layer and is read-only
// afterwards. Readers return views into the record; callers must not
// mutate them. Setters never fail: invalid rules are rejected by the
// dependency graph or the generator, not here.
type CustomCommand struct {
	outputs         []string
	byproducts      []string
	depends         []string
	mainDependency  Optional[string]
	commandLines    CommandLines
	backtrace       Backtrace
	implicitDepends ImplicitDepends
	target          string
	role            string
	comment         Optional[string]
	workingDir      string
	depfile         string
	jobPool         string
	policies        PolicySnapshot
	synthesized     bool

	escapeOldStyle      bool
	escapeAllowMakeVars bool
	usesTerminal        bool
	commandExpandLists  bool
	stdPipesUTF8        bool
	dependsExplicitOnly bool
	jobserverAware      bool
	codegen             bool
}

// NewCustomCommand creates a user-authored custom command and records the
// policy statuses in force at its authoring site.
// It panics if policies is nil.
func NewCustomCommand(policies PolicyResolver) *CustomCommand {
	if policies == nil {
		panic("domain: NewCustomCommand requires a policy resolver")
	}
	cc := newCustomCommand()
	cc.policies.Record(policies)
	return cc
}

// NewSynthesizedCommand creates a custom command generated by the system
// itself. Every policy reads NEW.
func NewSynthesizedCommand() *CustomCommand {
	cc := newCustomCommand()
	cc.synthesized = true
	return cc
}

func newCustomCommand() *CustomCommand {
	return &CustomCommand{escapeOldStyle: true}
}

// Outputs returns the files this rule produces.
func (cc *CustomCommand) Outputs() []string { return cc.outputs }

// SetOutputs replaces the outputs.
func (cc *CustomCommand) SetOutputs(outputs []string) {
	cc.outputs = slices.Clone(outputs)
}

// SetOutput replaces the outputs with a single file.
func (cc *CustomCommand) SetOutput(output string) {
	cc.outputs = []string{output}
}

// Byproducts returns the extra, non-primary files this rule produces.
func (cc *CustomCommand) Byproducts() []string { return cc.byproducts }

// SetByproducts replaces the byproducts.
func (cc *CustomCommand) SetByproducts(byproducts []string) {
	cc.byproducts = slices.Clone(byproducts)
}

// Depends returns the explicit inputs.
func (cc *CustomCommand) Depends() []string { return cc.depends }

// SetDepends replaces the explicit inputs.
func (cc *CustomCommand) SetDepends(depends []string) {
	cc.depends = slices.Clone(depends)
}

// AppendDepends adds inputs after the existing ones.
func (cc *CustomCommand) AppendDepends(depends []string) {
	cc.depends = append(cc.depends, depends...)
}

// MainDependency returns the primary input and whether one was set.
// An unset main dependency is never reported as "".
func (cc *CustomCommand) MainDependency() (string, bool) {
	return cc.mainDependency.Get()
}

// HasMainDependency reports whether SetMainDependency was called.
func (cc *CustomCommand) HasMainDependency() bool {
	return cc.mainDependency.IsPresent()
}

// SetMainDependency sets the primary input. An empty string is a valid value.
func (cc *CustomCommand) SetMainDependency(dep string) {
	cc.mainDependency = Some(dep)
}

// CommandLines returns the invocations, in execution order.
func (cc *CustomCommand) CommandLines() CommandLines { return cc.commandLines }

// SetCommandLines replaces the invocations.
func (cc *CustomCommand) SetCommandLines(lines CommandLines) {
	cc.commandLines = lines.Clone()
}

// AppendCommands adds invocations after the existing ones.
func (cc *CustomCommand) AppendCommands(lines CommandLines) {
	cc.commandLines = cc.commandLines.Append(lines...)
}

// WorkingDirectory returns the working directory; "" means the current build directory.
func (cc *CustomCommand) WorkingDirectory() string { return cc.workingDir }

// SetWorkingDirectory sets the working directory.
func (cc *CustomCommand) SetWorkingDirectory(dir string) { cc.workingDir = dir }

// Comment returns the comment and whether one was set.
func (cc *CustomCommand) Comment() (string, bool) {
	return cc.comment.Get()
}

// HasComment reports whether SetComment was called.
func (cc *CustomCommand) HasComment() bool {
	return cc.comment.IsPresent()
}

// SetComment sets the comment. An empty string is a valid value.
func (cc *CustomCommand) SetComment(comment string) {
	cc.comment = Some(comment)
}

// ImplicitDepends returns the scanner-discovered dependencies.
func (cc *CustomCommand) ImplicitDepends() ImplicitDepends { return cc.implicitDepends }

// SetImplicitDepends replaces the scanner-discovered dependencies.
func (cc *CustomCommand) SetImplicitDepends(deps ImplicitDepends) {
	cc.implicitDepends = deps.Clone()
}

// AppendImplicitDepends adds scanner-discovered dependencies after the existing ones.
func (cc *CustomCommand) AppendImplicitDepends(deps ImplicitDepends) {
	cc.implicitDepends = cc.implicitDepends.Append(deps...)
}

// Backtrace returns where the rule was declared.
func (cc *CustomCommand) Backtrace() Backtrace { return cc.backtrace }

// SetBacktrace sets where the rule was declared.
func (cc *CustomCommand) SetBacktrace(bt Backtrace) { cc.backtrace = bt }

// Target returns the owning target.
func (cc *CustomCommand) Target() string { return cc.target }

// SetTarget sets the owning target.
func (cc *CustomCommand) SetTarget(target string) { cc.target = target }

// Role returns the logical purpose of the rule (e.g. "pre-build").
func (cc *CustomCommand) Role() string { return cc.role }

// SetRole sets the logical purpose of the rule.
func (cc *CustomCommand) SetRole(role string) { cc.role = role }

// Depfile returns the dynamic-dependency file, or "" when unset.
func (cc *CustomCommand) Depfile() string { return cc.depfile }

// SetDepfile sets the dynamic-dependency file.
func (cc *CustomCommand) SetDepfile(depfile string) { cc.depfile = depfile }

// JobPool returns the named concurrency pool, or "" for the default pool.
func (cc *CustomCommand) JobPool() string { return cc.jobPool }

// SetJobPool sets the named concurrency pool.
func (cc *CustomCommand) SetJobPool(pool string) { cc.jobPool = pool }

// EscapeOldStyle reports whether generators use the legacy, conservative escaping table.
func (cc *CustomCommand) EscapeOldStyle() bool { return cc.escapeOldStyle }

// SetEscapeOldStyle sets EscapeOldStyle.
func (cc *CustomCommand) SetEscapeOldStyle(b bool) { cc.escapeOldStyle = b }

// EscapeAllowMakeVars reports whether $(VAR) references pass through unescaped.
func (cc *CustomCommand) EscapeAllowMakeVars() bool { return cc.escapeAllowMakeVars }

// SetEscapeAllowMakeVars sets EscapeAllowMakeVars.
func (cc *CustomCommand) SetEscapeAllowMakeVars(b bool) { cc.escapeAllowMakeVars = b }

// UsesTerminal reports whether the rule wants the real console.
func (cc *CustomCommand) UsesTerminal() bool { return cc.usesTerminal }

// SetUsesTerminal sets UsesTerminal.
func (cc *CustomCommand) SetUsesTerminal(b bool) { cc.usesTerminal = b }

// CommandExpandLists reports whether list arguments expand to several tokens.
func (cc *CustomCommand) CommandExpandLists() bool { return cc.commandExpandLists }

// SetCommandExpandLists sets CommandExpandLists.
func (cc *CustomCommand) SetCommandExpandLists(b bool) { cc.commandExpandLists = b }

// StdPipesUTF8 reports whether the rule's output pipes carry UTF-8.
func (cc *CustomCommand) StdPipesUTF8() bool { return cc.stdPipesUTF8 }

// SetStdPipesUTF8 sets StdPipesUTF8.
func (cc *CustomCommand) SetStdPipesUTF8(b bool) { cc.stdPipesUTF8 = b }

// DependsExplicitOnly reports whether only explicit depends are used,
// ignoring dependencies contributed by consumers of the outputs.
func (cc *CustomCommand) DependsExplicitOnly() bool { return cc.dependsExplicitOnly }

// SetDependsExplicitOnly sets DependsExplicitOnly.
func (cc *CustomCommand) SetDependsExplicitOnly(b bool) { cc.dependsExplicitOnly = b }

// JobserverAware reports whether the rule may use the jobserver.
func (cc *CustomCommand) JobserverAware() bool { return cc.jobserverAware }

// SetJobserverAware sets JobserverAware.
func (cc *CustomCommand) SetJobserverAware(b bool) { cc.jobserverAware = b }

// Codegen reports whether the rule counts as a code-generation step.
func (cc *CustomCommand) Codegen() bool { return cc.codegen }

// SetCodegen sets Codegen.
func (cc *CustomCommand) SetCodegen(b bool) { cc.codegen = b }

// RecordPolicyValues overwrites the policy snapshot with the statuses
// resolved by policies. The last recording wins.
func (cc *CustomCommand) RecordPolicyValues(policies PolicyResolver) {
	cc.policies.Record(policies)
	cc.synthesized = false
}

// PolicyStatus returns the recorded status of a policy.
func (cc *CustomCommand) PolicyStatus(id PolicyID) PolicyStatus {
	return cc.policies.Status(id)
}

// Policies returns the policy snapshot.
func (cc *CustomCommand) Policies() PolicySnapshot { return cc.policies }

// Synthesized reports whether the rule was created by NewSynthesizedCommand
// and never had policies recorded.
func (cc *CustomCommand) Synthesized() bool { return cc.synthesized }

// Equal reports whether both records are observably equal on every reader.
// A nil slice equals an empty one.
func (cc *CustomCommand) Equal(other *CustomCommand) bool {
	if cc == nil || other == nil {
		return cc == other
	}
	return slices.Equal(cc.outputs, other.outputs) &&
		slices.Equal(cc.byproducts, other.byproducts) &&
		slices.Equal(cc.depends, other.depends) &&
		cc.mainDependency == other.mainDependency &&
		cc.commandLines.Equal(other.commandLines) &&
		cc.backtrace.Equal(other.backtrace) &&
		cc.implicitDepends.Equal(other.implicitDepends) &&
		cc.target == other.target &&
		cc.role == other.role &&
		cc.comment == other.comment &&
		cc.workingDir == other.workingDir &&
		cc.depfile == other.depfile &&
		cc.jobPool == other.jobPool &&
		cc.policies == other.policies &&
		cc.synthesized == other.synthesized &&
		cc.escapeOldStyle == other.escapeOldStyle &&
		cc.escapeAllowMakeVars == other.escapeAllowMakeVars &&
		cc.usesTerminal == other.usesTerminal &&
		cc.commandExpandLists == other.commandExpandLists &&
		cc.stdPipesUTF8 == other.stdPipesUTF8 &&
		cc.dependsExplicitOnly == other.dependsExplicitOnly &&
		cc.jobserverAware == other.jobserverAware &&
		cc.codegen == other.codegen
}
