// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package ruby recognizes resource types written in Ruby: the type's own
// Puppet::Type.newtype declaration and extension call chains of the form
//
//	Puppet::Type.type(:tent).newparam(:size) do
//	  desc 'How large the tent is.'
//	end
//
// which add members to a type declared elsewhere. Files are parsed with the
// tree-sitter Ruby grammar; only the call shapes needed for documentation
// are read from the syntax tree.
package ruby

import (
	"context"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tsruby "github.com/smacker/go-tree-sitter/ruby"

	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

// Parser is the Ruby dialect.
type Parser struct{}

// New creates a Ruby dialect parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the dialect name.
func (p *Parser) Name() string {
	return "ruby"
}

// extraMethods are the chain methods that may decorate a resource type.
var extraMethods = map[string]bool{
	"newparam":    true,
	"newproperty": true,
	"ensurable":   true,
}

// Parse extracts resource type declarations and extension calls.
func (p *Parser) Parse(source []byte, filename string) ([]statement.Statement, error) {
	tp := sitter.NewParser()
	defer tp.Close()
	tp.SetLanguage(tsruby.GetLanguage())

	tree, err := tp.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, errors.At(errors.Wrap(err, errors.KindParse, "tree-sitter parse failed"), filename, 0)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, errors.At(syntaxError(root, source), filename, 0)
	}

	ps := newParseState(source, filename, root)
	return ps.run(root), nil
}

// syntaxError describes the first error or missing node below n.
func syntaxError(n *sitter.Node, src []byte) error {
	bad := firstError(n)
	if bad == nil {
		return errorAt(1, "syntax error")
	}
	line := int(bad.StartPoint().Row) + 1
	if bad.IsMissing() {
		return errorAt(line, "missing '%s' on line %d", bad.Type(), line)
	}
	text, _, _ := strings.Cut(bad.Content(src), "\n")
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	return errorAt(line, "unexpected '%s' on line %d", strings.TrimSpace(text), line)
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsMissing() || n.Type() == "ERROR" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !(c.HasError() || c.IsMissing()) {
			continue
		}
		if bad := firstError(c); bad != nil {
			return bad
		}
	}
	return nil
}

func errorAt(line int, format string, args ...any) error {
	return errors.At(errors.Errorf(errors.KindParse, format, args...), "", line)
}

type parseState struct {
	src  []byte
	file string
	// comments holds own-line comments by line number.
	comments map[int]string
	// heredocs holds decoded heredoc bodies by the start byte of their opener.
	heredocs map[uint32]string
}

func newParseState(src []byte, file string, root *sitter.Node) *parseState {
	ps := &parseState{src: src, file: file, comments: make(map[int]string)}

	var openers []*sitter.Node
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "comment":
			text := n.Content(src)
			if strings.HasPrefix(text, "#") && ownLine(src, int(n.StartByte())) {
				ps.comments[line(n)] = strings.TrimRight(text[1:], "\r")
			}
		case "heredoc_beginning":
			openers = append(openers, n)
		}
		return true
	})
	sort.Slice(openers, func(i, j int) bool { return openers[i].StartByte() < openers[j].StartByte() })
	ps.heredocs = readHeredocs(src, openers)
	return ps
}

// walk visits n and its named descendants in document order. Children are
// skipped when fn returns false.
func walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if !fn(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), fn)
	}
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func ownLine(src []byte, pos int) bool {
	for i := pos - 1; i >= 0 && src[i] != '\n'; i-- {
		if src[i] != ' ' && src[i] != '\t' {
			return false
		}
	}
	return true
}

func (ps *parseState) text(n *sitter.Node) string {
	return n.Content(ps.src)
}

// call is a method call or a bare identifier read as a call without
// arguments.
type call struct {
	node     *sitter.Node
	receiver *sitter.Node
	method   string
	args     *sitter.Node
	block    *sitter.Node
}

func (ps *parseState) asCall(n *sitter.Node) (call, bool) {
	switch n.Type() {
	case "identifier":
		return call{node: n, method: ps.text(n)}, true
	case "call":
		m := n.ChildByFieldName("method")
		if m == nil {
			return call{}, false
		}
		return call{
			node:     n,
			receiver: n.ChildByFieldName("receiver"),
			method:   ps.text(m),
			args:     n.ChildByFieldName("arguments"),
			block:    n.ChildByFieldName("block"),
		}, true
	}
	return call{}, false
}

// statements returns the top-level statements of a do/end or brace block.
func statements(block *sitter.Node) []*sitter.Node {
	if block == nil {
		return nil
	}
	if body := block.ChildByFieldName("body"); body != nil {
		block = body
	}
	var out []*sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		c := block.NamedChild(i)
		switch c.Type() {
		case "block_parameters", "comment", "heredoc_body":
			continue
		}
		out = append(out, c)
	}
	return out
}

func (ps *parseState) run(root *sitter.Node) []statement.Statement {
	var out []statement.Statement
	walk(root, func(n *sitter.Node) bool {
		if n.Type() != "call" {
			return true
		}
		c, ok := ps.asCall(n)
		if !ok || c.receiver == nil {
			return true
		}
		switch {
		case c.method == "newtype" && isTypeConstant(ps.constant(c.receiver)):
			if stmt, ok := ps.newtype(c); ok {
				out = append(out, stmt)
				return false
			}
		case extraMethods[c.method]:
			if stmt, ok := ps.extra(c); ok {
				out = append(out, stmt)
				return false
			}
		}
		return true
	})
	return out
}

func isTypeConstant(s string) bool {
	return s == "Puppet::Type" || s == "Type"
}

// constant returns the path of a constant reference, empty for anything
// else.
func (ps *parseState) constant(n *sitter.Node) string {
	switch n.Type() {
	case "constant", "scope_resolution":
		return strings.TrimPrefix(ps.text(n), "::")
	}
	return ""
}

// newtype reads Puppet::Type.newtype(:name) do ... end.
func (ps *parseState) newtype(c call) (statement.Statement, bool) {
	name, ok := firstName(ps.args(c.args))
	if !ok {
		return statement.Statement{}, false
	}

	stmt := statement.Statement{
		Kind:   statement.KindResourceType,
		Name:   name,
		File:   ps.file,
		Line:   line(c.node),
		Source: ps.text(c.node),
		Type:   &statement.TypeDecl{},
	}

	var doc string
	if c.block != nil {
		doc = ps.typeBody(c.block, stmt.Type)
	}
	if strings.TrimSpace(doc) != "" {
		stmt.Docstring = docstring.Parse(doc)
	} else {
		stmt.Docstring = ps.docstringAbove(stmt.Line)
	}
	return stmt, true
}

// typeBody reads the statements of a newtype block into decl and returns
// the type's own documentation text.
func (ps *parseState) typeBody(block *sitter.Node, decl *statement.TypeDecl) string {
	var doc string
	for _, n := range statements(block) {
		if n.Type() == "assignment" {
			left := n.ChildByFieldName("left")
			if left != nil && ps.text(left) == "@doc" {
				if s, ok := ps.stringValue(n.ChildByFieldName("right")); ok {
					doc = s
				}
			}
			continue
		}

		c, ok := ps.asCall(n)
		if !ok || c.receiver != nil {
			continue
		}
		switch c.method {
		case "desc":
			if s, ok := firstString(ps.args(c.args)); ok {
				doc = s
			}
		case "newparam", "newproperty", "newcheck":
			m, ok := ps.member(c)
			if !ok {
				continue
			}
			switch c.method {
			case "newparam":
				decl.Parameters = append(decl.Parameters, m)
			case "newproperty":
				decl.Properties = append(decl.Properties, m)
			default:
				decl.Checks = append(decl.Checks, m)
			}
		case "ensurable":
			decl.Properties = append(decl.Properties, ps.ensurable(c))
		case "feature":
			if f, ok := feature(ps.args(c.args)); ok {
				decl.Features = append(decl.Features, f)
			}
		}
	}
	return doc
}

// member reads newparam/newproperty/newcheck(:name, opts) [block].
func (ps *parseState) member(c call) (statement.Member, bool) {
	args := ps.args(c.args)
	name, ok := firstName(args)

	m := statement.Member{Name: name, Line: line(c.node), Namevar: namevarOption(args)}
	if c.block != nil {
		ps.memberBody(c.block, &m)
	}
	return m, ok
}

// ensurable reads "ensurable [do ... end]" into the ensure property.
func (ps *parseState) ensurable(c call) statement.Member {
	m := statement.Member{Name: "ensure", Line: line(c.node)}
	if c.block != nil {
		ps.memberBody(c.block, &m)
	} else {
		m.Values = []string{"present", "absent"}
	}
	if m.Description == "" {
		m.Description = statement.EnsurableDescription
	}
	return m
}

// memberBody collects desc, isnamevar, newvalue(s), defaultvalues and
// defaultto from a member block.
func (ps *parseState) memberBody(block *sitter.Node, m *statement.Member) {
	for _, n := range statements(block) {
		c, ok := ps.asCall(n)
		if !ok || c.receiver != nil {
			continue
		}
		switch c.method {
		case "desc":
			if s, ok := firstString(ps.args(c.args)); ok {
				m.Description = strings.TrimSpace(docstring.Dedent(s))
			}
		case "isnamevar":
			m.Namevar = true
		case "newvalues", "newvalue":
			for _, a := range ps.args(c.args) {
				if a.key != "" {
					continue
				}
				m.Values = appendValue(m.Values, a.text())
				if c.method == "newvalue" {
					break
				}
			}
		case "defaultvalues":
			m.Values = appendValue(m.Values, "present")
			m.Values = appendValue(m.Values, "absent")
		case "defaultto":
			if c.block != nil {
				continue
			}
			args := ps.args(c.args)
			if len(args) > 0 && args[0].key == "" {
				def := args[0].text()
				m.Default = &def
			}
		}
	}
}

func appendValue(values []string, v string) []string {
	for _, existing := range values {
		if existing == v {
			return values
		}
	}
	return append(values, v)
}

// extra reads an extension call chain such as
// Puppet::Type.type(:tent).newparam(:size) do ... end.
func (ps *parseState) extra(c call) (statement.Statement, bool) {
	ec := &statement.ExtraCall{Method: c.method}

	recv := c.receiver
	if recv.Type() == "call" {
		lookup, ok := ps.asCall(recv)
		if !ok || lookup.receiver == nil {
			return statement.Statement{}, false
		}
		ec.LookupMethod = lookup.method
		ec.LookupArgs = positional(ps.args(lookup.args))
		recv = lookup.receiver
	}
	switch recv.Type() {
	case "constant", "scope_resolution":
		ec.Receiver = ps.constant(recv)
	case "identifier", "instance_variable":
		ec.Receiver = ps.text(recv)
	default:
		return statement.Statement{}, false
	}

	args := ps.args(c.args)
	ec.Args = positional(args)
	ec.Body.Namevar = namevarOption(args)
	if c.block != nil {
		ps.memberBody(c.block, &ec.Body)
	}

	name := ""
	if len(ec.LookupArgs) > 0 {
		name = ec.LookupArgs[0]
	}
	l := line(c.node)
	return statement.Statement{
		Kind:      statement.KindTypeExtra,
		Name:      name,
		Docstring: ps.docstringAbove(l),
		Source:    ps.text(c.node),
		File:      ps.file,
		Line:      l,
		Extra:     ec,
	}, true
}

func (ps *parseState) docstringAbove(l int) docstring.Docstring {
	var lines []string
	for n := l - 1; n > 0; n-- {
		c, ok := ps.comments[n]
		if !ok {
			break
		}
		lines = append(lines, c)
	}
	if len(lines) == 0 {
		return docstring.Docstring{}
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return docstring.Parse(strings.Join(lines, "\n"))
}
