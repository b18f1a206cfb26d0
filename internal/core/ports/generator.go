package ports

import (
	"context"
	"io"

	"go.trai.ch/cmdrule/internal/core/domain"
)

// Generator defines the interface for rendering custom commands into a
// native build file format.
//
//go:generate go run go.uber.org/mock/mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks
type Generator interface {
	// Generate writes build rules for the plan's rules, in order, to w.
	Generate(ctx context.Context, w io.Writer, plan domain.BuildPlan) error
}
