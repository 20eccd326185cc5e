package luatable

import (
	"fmt"
	"sort"
	"strings"
)

type Format int

const (
	FormatLua Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatLua:
		return "lua"
	case FormatJSON:
		return "json"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "lua":
		return FormatLua, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("unknown table format %q (expected lua or json)", raw)
	}
}

// Node is an element of an immutable table tree.
type Node interface {
	NodeName() string
	render(f Format) Lines
}

// Block is a named table whose entries are other named nodes.
type Block struct {
	Name     string
	Children []Node
}

// List is a named table of string literals.
type List struct {
	Name   string
	Values []string
}

func (b Block) NodeName() string { return b.Name }
func (l List) NodeName() string  { return l.Name }

func (b Block) render(f Format) Lines {
	parts := make([]Lines, len(b.Children))
	for i, child := range b.Children {
		parts[i] = child.render(f)
	}
	body := JoinWithSeparators(parts)

	if f == FormatJSON {
		return wrap(quote(b.Name)+": {", body, "}")
	}
	return MakeBlock(b.Name, body)
}

func (l List) render(f Format) Lines {
	items := make([]Lines, len(l.Values))
	for i, line := range QuoteEach(l.Values) {
		items[i] = Lines{line}
	}
	body := JoinWithSeparators(items)

	if f == FormatJSON {
		return wrap(quote(l.Name)+": [", body, "]")
	}
	return MakeBlock(l.Name, body)
}

// RenderLines renders root. The JSON form wraps the root entry in an
// enclosing object so that the result is a complete JSON document.
func RenderLines(root Node, f Format) Lines {
	lines := root.render(f)
	if f == FormatJSON {
		return wrap("{", lines, "}")
	}
	return lines
}

// Render renders root to text. The output depends only on the tree.
func Render(root Node, f Format) string {
	return RenderLines(root, f).String()
}

// Normalize returns an equivalent tree with block children sorted by name
// and empty blocks turned into empty lists, which is the shape Decode
// produces since Lua tables carry neither order nor a block/list tag when
// empty.
func Normalize(n Node) Node {
	switch v := n.(type) {
	case Block:
		if len(v.Children) == 0 {
			return List{Name: v.Name, Values: []string{}}
		}
		children := make([]Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = Normalize(c)
		}
		sort.SliceStable(children, func(i, j int) bool {
			return children[i].NodeName() < children[j].NodeName()
		})
		return Block{Name: v.Name, Children: children}
	case List:
		values := append([]string{}, v.Values...)
		return List{Name: v.Name, Values: values}
	default:
		return n
	}
}
