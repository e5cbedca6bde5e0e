// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ruby

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"grimm.is/voxdoc/internal/statement"
)

type argKind int

const (
	argOther argKind = iota
	argSymbol
	argString
	argRegex
	argArray
)

// arg is one call argument. Keyword and hash-rocket options carry a key.
type arg struct {
	kind  argKind
	key   string
	value string
	raw   string
	elems []arg
}

// text returns the documentation form of the argument: symbol names and
// string contents unwrapped, anything else as written.
func (a arg) text() string {
	switch a.kind {
	case argSymbol, argString:
		return a.value
	default:
		return a.raw
	}
}

// args reads the children of an argument list or array literal. Braced
// hashes are flattened into keyed options and splatted array literals into
// their elements.
func (ps *parseState) args(list *sitter.Node) []arg {
	if list == nil {
		return nil
	}
	var out []arg
	for i := 0; i < int(list.NamedChildCount()); i++ {
		c := list.NamedChild(i)
		switch c.Type() {
		case "comment", "heredoc_body", "block_argument", "hash_splat_argument", "forward_argument":
		case "hash":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if p := c.NamedChild(j); p.Type() == "pair" {
					out = append(out, ps.pair(p))
				}
			}
		case "pair":
			out = append(out, ps.pair(c))
		case "splat_argument":
			var inner arg
			if c.NamedChildCount() > 0 {
				inner = ps.argFrom(c.NamedChild(0))
			}
			if inner.kind == argArray {
				out = append(out, inner.elems...)
			} else {
				out = append(out, arg{kind: argOther, raw: ps.text(c)})
			}
		default:
			out = append(out, ps.argFrom(c))
		}
	}
	return out
}

func (ps *parseState) pair(n *sitter.Node) arg {
	v := ps.argFrom(n.ChildByFieldName("value"))
	if key := n.ChildByFieldName("key"); key != nil {
		v.key = ps.keyName(key)
	}
	return v
}

func (ps *parseState) keyName(n *sitter.Node) string {
	switch n.Type() {
	case "simple_symbol", "delimited_symbol":
		return ps.symbolName(n)
	case "string":
		return decodeString(ps.text(n))
	}
	return strings.TrimSuffix(ps.text(n), ":")
}

func (ps *parseState) symbolName(n *sitter.Node) string {
	text := ps.text(n)
	switch n.Type() {
	case "simple_symbol":
		return strings.TrimPrefix(text, ":")
	case "delimited_symbol":
		return decodeString(strings.TrimPrefix(text, ":"))
	}
	return text
}

func (ps *parseState) argFrom(n *sitter.Node) arg {
	if n == nil {
		return arg{kind: argOther}
	}
	raw := ps.text(n)
	switch n.Type() {
	case "simple_symbol", "delimited_symbol", "bare_symbol":
		return arg{kind: argSymbol, value: ps.symbolName(n), raw: raw}
	case "regex":
		return arg{kind: argRegex, value: raw, raw: raw}
	case "array":
		return arg{kind: argArray, raw: raw, elems: ps.args(n)}
	case "string_array", "symbol_array":
		a := arg{kind: argArray, raw: raw}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			a.elems = append(a.elems, ps.argFrom(n.NamedChild(i)))
		}
		return a
	case "bare_string":
		return arg{kind: argString, value: raw, raw: raw}
	}
	if s, ok := ps.stringValue(n); ok {
		return arg{kind: argString, value: s, raw: raw}
	}
	return arg{kind: argOther, raw: raw}
}

func positional(args []arg) []string {
	var out []string
	for _, a := range args {
		if a.key == "" {
			out = append(out, a.text())
		}
	}
	return out
}

// firstName returns the first positional symbol or string argument.
func firstName(args []arg) (string, bool) {
	for _, a := range args {
		if a.key != "" {
			continue
		}
		if a.kind == argSymbol || a.kind == argString {
			return a.value, a.value != ""
		}
		return "", false
	}
	return "", false
}

func firstString(args []arg) (string, bool) {
	for _, a := range args {
		if a.key == "" && a.kind == argString {
			return a.value, true
		}
	}
	return "", false
}

func option(args []arg, key string) (arg, bool) {
	for _, a := range args {
		if a.key == key {
			return a, true
		}
	}
	return arg{}, false
}

func namevarOption(args []arg) bool {
	a, ok := option(args, "namevar")
	return ok && a.raw == "true"
}

// feature reads feature :name, "description", :methods => [...].
func feature(args []arg) (statement.Feature, bool) {
	name, ok := firstName(args)
	if !ok {
		return statement.Feature{}, false
	}
	f := statement.Feature{Name: name}

	pos := 0
	for _, a := range args {
		if a.key != "" {
			continue
		}
		if pos == 1 && a.kind == argString {
			f.Description = a.value
		}
		pos++
	}
	if m, ok := option(args, "methods"); ok {
		for _, e := range m.elems {
			f.Methods = append(f.Methods, e.text())
		}
	}
	return f, true
}
