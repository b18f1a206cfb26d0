package ports

import "go.trai.ch/cmdrule/internal/core/domain"

// RuleLoader defines the interface for the authoring layer.
//
//go:generate go run go.uber.org/mock/mockgen -source=rule_loader.go -destination=mocks/mock_rule_loader.go -package=mocks
type RuleLoader interface {
	// Load finds the rule file for cwd, evaluates it and returns every custom
	// command with its policy snapshot recorded.
	Load(cwd string) (*domain.RuleSet, error)
}
