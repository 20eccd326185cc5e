package luatable

import (
	"strings"
)

// Indent is one structural nesting level.
const Indent = "  "

// Lines is a rendered fragment, one entry per output line without the
// trailing newline. Operations return new slices and never modify their
// arguments.
type Lines []string

// String joins the lines, terminating each with a newline.
func (l Lines) String() string {
	var sb strings.Builder
	for _, line := range l {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Indented shifts every line n levels deeper.
func (l Lines) Indented(n int) Lines {
	prefix := strings.Repeat(Indent, n)
	out := make(Lines, len(l))
	for i, line := range l {
		out[i] = prefix + line
	}
	return out
}

// MakeBlock renders `name = {`, body one level deeper, and `}`. A name
// that is not a Lua identifier is written as `["name"] = {` so that the
// table still loads.
func MakeBlock(name string, body Lines) Lines {
	return wrap(luaKey(name)+" = {", body, "}")
}

func wrap(open string, body Lines, close string) Lines {
	out := make(Lines, 0, len(body)+2)
	out = append(out, open)
	out = append(out, body.Indented(1)...)
	return append(out, close)
}

// JoinWithSeparators concatenates blocks, appending a comma to the final
// line of every block except the last one.
func JoinWithSeparators(blocks []Lines) Lines {
	var out Lines
	for i, block := range blocks {
		out = append(out, block...)
		if i < len(blocks)-1 && len(block) > 0 {
			out[len(out)-1] += ","
		}
	}
	return out
}

// QuoteEach turns every value into a quoted string literal line.
func QuoteEach(values []string) Lines {
	out := make(Lines, len(values))
	for i, v := range values {
		out[i] = quote(v)
	}
	return out
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

// luaKey returns name unchanged when it is a valid Lua identifier and the
// bracketed string form otherwise.
func luaKey(name string) string {
	if isIdentifier(name) {
		return name
	}
	return "[" + quote(name) + "]"
}

func isIdentifier(s string) bool {
	if s == "" || luaKeywords[s] {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

var luaKeywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}
