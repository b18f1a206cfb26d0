// Package depgraph links custom commands to each other through the files
// they produce and consume.
package depgraph

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/cmdrule/internal/core/domain"
	"go.trai.ch/zerr"
)

// Graph indexes custom commands by the files they produce.
type Graph struct {
	records   []*domain.CustomCommand
	producers map[string]int
	edges     [][]int
	order     []int
	warnings  []string
	validated bool
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		producers: make(map[string]int),
	}
}

// Add registers a custom command and every output and byproduct it declares.
// A file may be declared once across the whole graph, the rule's own outputs
// and byproducts included.
//
// A rule declaring neither outputs nor byproducts is rejected with
// ErrNoOutputs when its PolicyRequireOutputs is NEW, and recorded as a
// warning otherwise.
func (g *Graph) Add(cc *domain.CustomCommand) error {
	if len(cc.Outputs()) == 0 && len(cc.Byproducts()) == 0 {
		if cc.PolicyStatus(domain.PolicyRequireOutputs) == domain.PolicyNew {
			return withOrigin(zerr.With(domain.ErrNoOutputs, "target", cc.Target()), cc)
		}
		g.warnings = append(g.warnings,
			"rule for target '"+cc.Target()+"' declares no outputs ("+origin(cc)+")")
	}

	idx := len(g.records)
	files := make([]string, 0, len(cc.Outputs())+len(cc.Byproducts()))
	files = append(files, cc.Outputs()...)
	files = append(files, cc.Byproducts()...)

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		if _, dup := seen[f]; dup {
			err := zerr.With(domain.ErrDuplicateOutput, "output", f)
			return withOrigin(err, cc)
		}
		seen[f] = struct{}{}
		if prev, exists := g.producers[f]; exists {
			err := zerr.With(domain.ErrDuplicateOutput, "output", f)
			err = zerr.With(err, "first_declared_at", origin(g.records[prev]))
			return withOrigin(err, cc)
		}
	}
	for _, f := range files {
		g.producers[f] = idx
	}

	g.records = append(g.records, cc)
	g.validated = false
	return nil
}

// Len returns the number of registered rules.
func (g *Graph) Len() int {
	return len(g.records)
}

// Warnings returns diagnostics for rules tolerated under legacy policies.
func (g *Graph) Warnings() []string {
	return g.warnings
}

// Producer returns the rule that produces path.
func (g *Graph) Producer(path string) (*domain.CustomCommand, bool) {
	idx, ok := g.producers[path]
	if !ok {
		return nil, false
	}
	return g.records[idx], true
}

// Validate links every rule to the producers of its depends and main
// dependency, and checks for cycles. Files nobody produces are treated as
// sources. On success the dependency order is fixed: rules are visited in
// registration order and each rule follows everything it depends on.
func (g *Graph) Validate() error {
	g.edges = make([][]int, len(g.records))
	for i, cc := range g.records {
		for _, in := range inputs(cc) {
			if p, ok := g.producers[in]; ok && !slices.Contains(g.edges[i], p) {
				g.edges[i] = append(g.edges[i], p)
			}
		}
	}

	g.order = make([]int, 0, len(g.records))
	visited := make([]int, len(g.records)) // 0: unvisited, 1: visiting, 2: visited
	var path []int

	var visit func(u int) error
	visit = func(u int) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.edges[u] {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.order = append(g.order, u)
		return nil
	}

	for i := range g.records {
		if visited[i] == 0 {
			if err := visit(i); err != nil {
				g.order = nil
				return err
			}
		}
	}

	g.validated = true
	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []int, dep int) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	labels := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		labels = append(labels, label(g.records[node]))
	}
	labels = append(labels, label(g.records[dep]))
	err := zerr.With(domain.ErrCycleDetected, "cycle", strings.Join(labels, " -> "))
	return withOrigin(err, g.records[dep])
}

// Walk yields rules in dependency order. Validate must have succeeded.
func (g *Graph) Walk() iter.Seq[*domain.CustomCommand] {
	return func(yield func(*domain.CustomCommand) bool) {
		if !g.validated {
			return
		}
		for _, idx := range g.order {
			if !yield(g.records[idx]) {
				return
			}
		}
	}
}

// Ordered returns the rules in dependency order, or ErrGraphNotValidated.
func (g *Graph) Ordered() ([]*domain.CustomCommand, error) {
	if !g.validated {
		return nil, domain.ErrGraphNotValidated
	}
	out := make([]*domain.CustomCommand, 0, len(g.order))
	for cc := range g.Walk() {
		out = append(out, cc)
	}
	return out, nil
}

// CodegenRules yields, in dependency order, the rules marked as code generation.
func (g *Graph) CodegenRules() iter.Seq[*domain.CustomCommand] {
	return func(yield func(*domain.CustomCommand) bool) {
		for cc := range g.Walk() {
			if cc.Codegen() && !yield(cc) {
				return
			}
		}
	}
}

func inputs(cc *domain.CustomCommand) []string {
	in := make([]string, 0, len(cc.Depends())+1)
	if main, ok := cc.MainDependency(); ok {
		in = append(in, main)
	}
	return append(in, cc.Depends()...)
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

func origin(cc *domain.CustomCommand) string {
	if cc.Backtrace().Empty() {
		return "<unknown>"
	}
	return cc.Backtrace().Top().String()
}

func withOrigin(err error, cc *domain.CustomCommand) error {
	return zerr.With(err, "declared_at", origin(cc))
}
