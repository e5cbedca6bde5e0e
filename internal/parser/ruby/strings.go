// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package ruby

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"grimm.is/voxdoc/internal/docstring"
)

// stringValue returns the text of a string-valued expression: literals,
// heredocs, adjacent literals, "a" + "b" concatenation and argument-less
// method calls on a string such as %q{...}.strip.
func (ps *parseState) stringValue(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "string":
		return decodeString(ps.text(n)), true
	case "heredoc_beginning":
		v, ok := ps.heredocs[n.StartByte()]
		return v, ok
	case "chained_string":
		var b strings.Builder
		for i := 0; i < int(n.NamedChildCount()); i++ {
			s, ok := ps.stringValue(n.NamedChild(i))
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	case "binary":
		op := n.ChildByFieldName("operator")
		if op == nil || ps.text(op) != "+" {
			return "", false
		}
		left, ok := ps.stringValue(n.ChildByFieldName("left"))
		if !ok {
			return "", false
		}
		right, ok := ps.stringValue(n.ChildByFieldName("right"))
		if !ok {
			return "", false
		}
		return left + right, true
	case "call":
		if n.ChildByFieldName("arguments") != nil || n.ChildByFieldName("block") != nil {
			return "", false
		}
		return ps.stringValue(n.ChildByFieldName("receiver"))
	case "parenthesized_statements":
		if n.NamedChildCount() == 1 {
			return ps.stringValue(n.NamedChild(0))
		}
	}
	return "", false
}

var percentDelims = map[byte]byte{'(': ')', '[': ']', '{': '}', '<': '>'}

// decodeString decodes the source of a quoted or percent string literal.
// Escapes are resolved; interpolations are kept as written.
func decodeString(raw string) string {
	if len(raw) < 2 {
		return ""
	}
	interpolate := true
	i := 1
	if raw[0] == '\'' {
		interpolate = false
	} else if raw[0] == '%' {
		if c := raw[1]; (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			interpolate = c == 'Q'
			i = 2
		}
		i++
	}
	if i > len(raw)-1 {
		return ""
	}
	openDelim := raw[i-1]
	closeDelim, ok := percentDelims[openDelim]
	if !ok {
		closeDelim = openDelim
	}
	body := raw[i : len(raw)-1]

	var b strings.Builder
	for j := 0; j < len(body); j++ {
		c := body[j]
		switch {
		case c == '\\' && j+1 < len(body):
			b.WriteString(unescape(body[j+1], interpolate, openDelim, closeDelim))
			j++
		case interpolate && c == '#' && j+1 < len(body) && body[j+1] == '{':
			end := interpolationEnd(body, j+2)
			b.WriteString(body[j:end])
			j = end - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// interpolationEnd returns the index just past the brace closing an
// interpolation whose content starts at from.
func interpolationEnd(s string, from int) int {
	depth := 1
	for k := from; k < len(s); k++ {
		switch s[k] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return k + 1
			}
		}
	}
	return len(s)
}

func unescape(c byte, interpolate bool, openDelim, closeDelim byte) string {
	if !interpolate {
		if c == '\\' || c == openDelim || c == closeDelim {
			return string(c)
		}
		return "\\" + string(c)
	}
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 's':
		return " "
	case '0':
		return "\x00"
	case 'e':
		return "\x1b"
	case '\n':
		return ""
	default:
		return string(c)
	}
}

// heredoc is a parsed opener such as <<~DOC or <<-'EOS'.
type heredoc struct {
	id       string
	squiggly bool
	indented bool
}

func parseOpener(text string) heredoc {
	s := strings.TrimPrefix(text, "<<")
	var h heredoc
	switch {
	case strings.HasPrefix(s, "~"):
		h.squiggly, h.indented = true, true
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		h.indented = true
		s = s[1:]
	}
	if len(s) >= 2 && strings.ContainsRune(`'"`+"`", rune(s[0])) && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	h.id = s
	return h
}

// readHeredocs decodes the body of every heredoc opener. A body starts on
// the line after its opener, or after the previous body when several
// heredocs open on one line.
func readHeredocs(src []byte, openers []*sitter.Node) map[uint32]string {
	out := make(map[uint32]string, len(openers))
	cursor := 0
	for _, n := range openers {
		start := lineAfter(src, int(n.EndByte()))
		if start < cursor {
			start = cursor
		}
		value, next := parseOpener(n.Content(src)).read(src, start)
		out[n.StartByte()] = value
		cursor = next
	}
	return out
}

func lineAfter(src []byte, pos int) int {
	idx := bytes.IndexByte(src[pos:], '\n')
	if idx < 0 {
		return len(src)
	}
	return pos + idx + 1
}

// read collects body lines from pos up to the terminator and returns the
// body and the position after the terminator line.
func (h heredoc) read(src []byte, pos int) (string, int) {
	var body []string
	for pos < len(src) {
		var text string
		if end := bytes.IndexByte(src[pos:], '\n'); end < 0 {
			text = string(src[pos:])
			pos = len(src)
		} else {
			text = string(src[pos : pos+end])
			pos += end + 1
		}
		text = strings.TrimRight(text, "\r")

		check := text
		if h.indented {
			check = strings.TrimSpace(text)
		}
		if check == h.id {
			break
		}
		body = append(body, text)
	}

	value := strings.Join(body, "\n")
	if h.squiggly {
		value = docstring.Dedent(value)
	}
	if len(body) > 0 {
		value += "\n"
	}
	return value, pos
}
