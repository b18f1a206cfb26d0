package domain

import "slices"

// ImplicitDepend is a dependency discovered by a scanner rather than declared
// by the rule author, tagged with the language whose scanner found it.
type ImplicitDepend struct {
	Path     string
	Language string
}

// ImplicitDepends is an ordered sequence of scanner-discovered dependencies.
// Duplicates are kept; deduplication belongs to the incremental-build engine.
type ImplicitDepends []ImplicitDepend

// Append returns a new ImplicitDepends with deps added after the existing ones.
func (d ImplicitDepends) Append(deps ...ImplicitDepend) ImplicitDepends {
	out := make(ImplicitDepends, 0, len(d)+len(deps))
	out = append(out, d...)
	return append(out, deps...)
}

// Clone returns a copy.
func (d ImplicitDepends) Clone() ImplicitDepends {
	return slices.Clone(d)
}

// Equal reports whether both sequences hold the same pairs in the same order.
func (d ImplicitDepends) Equal(other ImplicitDepends) bool {
	return slices.Equal(d, other)
}

// Languages returns each scanning language once, in first-seen order.
func (d ImplicitDepends) Languages() []string {
	var langs []string
	for _, dep := range d {
		if !slices.Contains(langs, dep.Language) {
			langs = append(langs, dep.Language)
		}
	}
	return langs
}

// Paths returns the dependency paths in order.
func (d ImplicitDepends) Paths() []string {
	paths := make([]string, len(d))
	for i, dep := range d {
		paths[i] = dep.Path
	}
	return paths
}
