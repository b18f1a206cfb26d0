package domain

import "slices"

// CommandLine is one invocation: an ordered sequence of argument tokens.
// Tokens are passed atomically to the process launcher; no shell
// interpretation is implied.
type CommandLine []string

// NewCommandLine builds a CommandLine from its arguments.
func NewCommandLine(args ...string) CommandLine {
	return CommandLine(slices.Clone(args))
}

// CommandLines is an ordered sequence of invocations executed in sequence.
// An empty CommandLines is valid and describes a rule with no side effect.
type CommandLines []CommandLine

// Append returns a new CommandLines with lines added after the existing ones.
// The receiver is left untouched.
func (c CommandLines) Append(lines ...CommandLine) CommandLines {
	out := make(CommandLines, 0, len(c)+len(lines))
	out = append(out, c...)
	for _, l := range lines {
		out = append(out, slices.Clone(l))
	}
	return out
}

// Clone returns a deep copy.
func (c CommandLines) Clone() CommandLines {
	if c == nil {
		return nil
	}
	out := make(CommandLines, len(c))
	for i, l := range c {
		out[i] = slices.Clone(l)
	}
	return out
}

// Len returns the number of invocations.
func (c CommandLines) Len() int {
	return len(c)
}

// Equal reports whether both sets hold the same invocations in the same order.
// A nil set equals an empty one.
func (c CommandLines) Equal(other CommandLines) bool {
	return slices.EqualFunc(c, other, func(a, b CommandLine) bool {
		return slices.Equal(a, b)
	})
}
