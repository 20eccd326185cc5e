package luatable

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/Shopify/go-lua"
)

// Decode evaluates a Lua table document in a fresh interpreter without
// standard libraries and reads back the global table rootName.
func Decode(text, rootName string) (Node, error) {
	l := lua.NewState()
	if err := lua.DoString(l, text); err != nil {
		return nil, fmt.Errorf("failed to evaluate lua table: %w", err)
	}

	l.Global(rootName)
	defer l.Pop(1)
	if !l.IsTable(-1) {
		return nil, fmt.Errorf("global %q is not a table", rootName)
	}
	return decodeTable(l, l.AbsIndex(-1), rootName)
}

func decodeTable(l *lua.State, idx int, name string) (Node, error) {
	length := l.RawLength(idx)
	keys, namedKeys := 0, false
	l.PushNil()
	for l.Next(idx) {
		keys++
		if l.TypeOf(-2) == lua.TypeString {
			namedKeys = true
		}
		l.Pop(1)
	}

	if !namedKeys && keys == length {
		values := make([]string, 0, length)
		for i := 1; i <= length; i++ {
			l.RawGetInt(idx, i)
			if l.TypeOf(-1) != lua.TypeString {
				l.Pop(1)
				return nil, fmt.Errorf("entry %d of %s is not a string", i, name)
			}
			s, _ := l.ToString(-1)
			l.Pop(1)
			values = append(values, s)
		}
		return List{Name: name, Values: values}, nil
	}

	var children []Node
	l.PushNil()
	for l.Next(idx) {
		if l.TypeOf(-2) != lua.TypeString || !l.IsTable(-1) {
			l.Pop(2)
			return nil, fmt.Errorf("%s mixes named tables with other entries", name)
		}
		key, _ := l.ToString(-2)
		child, err := decodeTable(l, l.AbsIndex(-1), key)
		l.Pop(1)
		if err != nil {
			l.Pop(1)
			return nil, err
		}
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].NodeName() < children[j].NodeName()
	})
	return Block{Name: name, Children: children}, nil
}

// Verify checks that text is a faithful rendering of root in format f.
// Lua output is evaluated and compared structurally; JSON output is checked
// for well-formedness.
func Verify(root Node, text string, f Format) error {
	switch f {
	case FormatJSON:
		if !json.Valid([]byte(text)) {
			return fmt.Errorf("rendered %s table is not valid JSON", root.NodeName())
		}
		return nil
	case FormatLua:
		decoded, err := Decode(text, root.NodeName())
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(Normalize(root), decoded) {
			return fmt.Errorf("rendered %s table does not round-trip", root.NodeName())
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %s", f)
	}
}
