package domain

// RuleSet is the result of evaluating a rule file tree: every custom
// command in declaration order.
type RuleSet struct {
	// Root is the directory holding the top-level rule file.
	Root string
	// Files lists every rule file read, in evaluation order.
	Files []string
	// Commands holds the custom commands in declaration order.
	Commands []*CustomCommand
}

// Targets returns each target name once, in first-declared order.
func (rs *RuleSet) Targets() []string {
	seen := make(map[string]bool)
	var targets []string
	for _, cc := range rs.Commands {
		if !seen[cc.Target()] {
			seen[cc.Target()] = true
			targets = append(targets, cc.Target())
		}
	}
	return targets
}

// ForTarget returns the commands owned by target, in declaration order.
func (rs *RuleSet) ForTarget(target string) []*CustomCommand {
	var out []*CustomCommand
	for _, cc := range rs.Commands {
		if cc.Target() == target {
			out = append(out, cc)
		}
	}
	return out
}
