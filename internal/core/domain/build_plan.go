package domain

// BuildPlan is a validated set of custom commands ready to be handed to a
// generator.
type BuildPlan struct {
	// Rules holds every custom command in dependency order.
	Rules []*CustomCommand
	// Codegen holds the rules that take part in code generation, in
	// dependency order. Each one also appears in Rules.
	Codegen []*CustomCommand
}
