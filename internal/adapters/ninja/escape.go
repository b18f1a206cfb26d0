package ninja

import (
	"regexp"
	"strings"
)

// makeVarRef matches a $(VAR) reference.
var makeVarRef = regexp.MustCompile(`\$\([A-Za-z_][A-Za-z0-9_]*\)`)

const (
	oldStyleSpecials = " \t\n\"'"
	newStyleSpecials = oldStyleSpecials + "$&|;<>()*?[]#~=%`\\"
)

// quoteArgument quotes one command-line token for a POSIX shell.
// The old-style table only reacts to whitespace and quotes and wraps the
// token in double quotes; the new-style table also protects shell
// metacharacters and wraps in single quotes. With allowMakeVars, $(VAR)
// references are kept outside the quotes.
func quoteArgument(arg string, oldStyle, allowMakeVars bool) string {
	if arg == "" {
		if oldStyle {
			return `""`
		}
		return "''"
	}
	if !allowMakeVars {
		return quoteSegment(arg, oldStyle)
	}

	var b strings.Builder
	last := 0
	for _, loc := range makeVarRef.FindAllStringIndex(arg, -1) {
		if loc[0] > last {
			b.WriteString(quoteSegment(arg[last:loc[0]], oldStyle))
		}
		b.WriteString(arg[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(arg) {
		b.WriteString(quoteSegment(arg[last:], oldStyle))
	}
	return b.String()
}

func quoteSegment(s string, oldStyle bool) string {
	if oldStyle {
		if !strings.ContainsAny(s, oldStyleSpecials) {
			return s
		}
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	if !strings.ContainsAny(s, newStyleSpecials) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// expandList splits a semicolon-separated list argument into its elements,
// dropping empty ones.
func expandList(arg string) []string {
	if !strings.Contains(arg, ";") {
		return []string{arg}
	}
	var out []string
	for elem := range strings.SplitSeq(arg, ";") {
		if elem != "" {
			out = append(out, elem)
		}
	}
	return out
}

var (
	pathEscaper  = strings.NewReplacer("$", "$$", ":", "$:", " ", "$ ", "\n", "$\n")
	valueEscaper = strings.NewReplacer("$", "$$", "\n", " ")
)

// escapePath escapes a path for use in a build statement.
func escapePath(p string) string {
	return pathEscaper.Replace(p)
}

// escapeValue escapes a variable value.
func escapeValue(v string) string {
	return valueEscaper.Replace(v)
}

// escapeCommand escapes a shell command for a Ninja variable. With
// allowMakeVars, $(VAR) references become Ninja ${VAR} references.
func escapeCommand(cmd string, allowMakeVars bool) string {
	if !allowMakeVars {
		return escapeValue(cmd)
	}

	var b strings.Builder
	last := 0
	for _, loc := range makeVarRef.FindAllStringIndex(cmd, -1) {
		b.WriteString(escapeValue(cmd[last:loc[0]]))
		b.WriteString("${")
		b.WriteString(cmd[loc[0]+2 : loc[1]-1])
		b.WriteString("}")
		last = loc[1]
	}
	b.WriteString(escapeValue(cmd[last:]))
	return b.String()
}
