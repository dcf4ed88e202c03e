package generator

import (
	"strings"
	"text/template"
)

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"escape":  escape,
		"include": include,
		"indent":  indent,
		"join":    strings.Join,
		"notLast": func(i, length int) bool { return i < length-1 },
	}
}

// escapes maps operator characters to letters usable in identifiers.
var escapes = map[rune]rune{
	'~': 't',
	'=': 'e',
	'+': 'p',
	'-': 'm',
	'*': 'u',
	'/': 'd',
	'|': 'l',
}

// escape turns a member name into an identifier suffix for predicate names.
// Characters outside [A-Za-z0-9_] without a dedicated mapping become 'x'.
func escape(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			if e, ok := escapes[r]; ok {
				b.WriteRune(e)
			} else {
				b.WriteRune('x')
			}
		}
	}
	return b.String()
}

// include renders an #include operand. Bare names become system headers.
func include(header string) string {
	header = strings.TrimSpace(header)
	if strings.HasPrefix(header, "<") || strings.HasPrefix(header, `"`) {
		return header
	}
	return "<" + header + ">"
}

// indent returns four spaces per level.
func indent(depth int) string {
	return strings.Repeat("    ", depth)
}
