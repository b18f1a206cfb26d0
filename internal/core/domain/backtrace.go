package domain

import (
	"iter"
	"strconv"
	"strings"
)

// Frame is one location in a rule file.
type Frame struct {
	// File is the rule file the frame points into.
	File InternedString
	// Line is the 1-based line number, or 0 when the format does not report lines.
	Line int
	// Command names the directive evaluated at this location (e.g. "rule", "subdirectory").
	Command string
}

// String renders the frame as "file:line (command)".
func (f Frame) String() string {
	var b strings.Builder
	b.WriteString(f.File.String())
	if f.Line > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
	}
	if f.Command != "" {
		b.WriteString(" (")
		b.WriteString(f.Command)
		b.WriteByte(')')
	}
	return b.String()
}

type backtraceNode struct {
	frame  Frame
	parent *backtraceNode
	depth  int
}

// Backtrace records where a custom command was declared.
// It is an immutable linked list: Push shares the parent chain, so
// backtraces of sibling rules share their common prefix.
// The zero Backtrace is empty.
type Backtrace struct {
	top *backtraceNode
}

// Push returns a new Backtrace with f as its innermost frame.
func (bt Backtrace) Push(f Frame) Backtrace {
	depth := 1
	if bt.top != nil {
		depth = bt.top.depth + 1
	}
	return Backtrace{top: &backtraceNode{frame: f, parent: bt.top, depth: depth}}
}

// Empty reports whether the backtrace has no frames.
func (bt Backtrace) Empty() bool {
	return bt.top == nil
}

// Len returns the number of frames.
func (bt Backtrace) Len() int {
	if bt.top == nil {
		return 0
	}
	return bt.top.depth
}

// Top returns the innermost frame. It returns the zero Frame when empty.
func (bt Backtrace) Top() Frame {
	if bt.top == nil {
		return Frame{}
	}
	return bt.top.frame
}

// Frames yields frames from innermost to outermost.
func (bt Backtrace) Frames() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		for n := bt.top; n != nil; n = n.parent {
			if !yield(n.frame) {
				return
			}
		}
	}
}

// Equal reports whether both backtraces hold the same frames in the same order.
func (bt Backtrace) Equal(other Backtrace) bool {
	a, b := bt.top, other.top
	for a != nil && b != nil {
		if a == b {
			return true
		}
		if a.frame != b.frame {
			return false
		}
		a, b = a.parent, b.parent
	}
	return a == nil && b == nil
}

// String renders one frame per line, innermost first.
func (bt Backtrace) String() string {
	lines := make([]string, 0, bt.Len())
	for f := range bt.Frames() {
		lines = append(lines, f.String())
	}
	return strings.Join(lines, "\n")
}
