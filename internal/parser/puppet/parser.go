// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package puppet recognizes the documentable declarations of the Puppet
// language: classes, defined types, plans and type aliases. It is not a
// Puppet grammar; bodies are only scanned far enough to find nested
// declarations and the closing brace.
package puppet

import (
	"strings"

	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

// Parser is the Puppet language dialect.
type Parser struct{}

// New creates a Puppet dialect parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the dialect name.
func (p *Parser) Name() string {
	return "puppet"
}

// Parse extracts declarations from Puppet source.
func (p *Parser) Parse(source []byte, filename string) ([]statement.Statement, error) {
	src := string(source)
	toks, comments, err := lex(src)
	if err != nil {
		return nil, errors.At(err, filename, 0)
	}

	ps := &parseState{
		src:      src,
		file:     filename,
		toks:     toks,
		match:    matchBrackets(toks),
		comments: make(map[int]comment),
	}
	for _, c := range comments {
		if c.ownLine {
			ps.comments[c.line] = c
		}
	}
	return ps.run(), nil
}

type scope struct {
	name  string
	close int
}

type parseState struct {
	src      string
	file     string
	toks     []token
	match    []int
	comments map[int]comment
	scopes   []scope
}

// matchBrackets maps every bracket token to the index of its partner. The
// lexer has already rejected unbalanced input.
func matchBrackets(toks []token) []int {
	match := make([]int, len(toks))
	var stack []int
	for i, t := range toks {
		match[i] = -1
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			stack = append(stack, i)
		case ")", "]", "}":
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			match[open] = i
			match[i] = open
		}
	}
	return match
}

func (ps *parseState) run() []statement.Statement {
	var out []statement.Statement

	for i := 0; i < len(ps.toks); i++ {
		for len(ps.scopes) > 0 && ps.scopes[len(ps.scopes)-1].close < i {
			ps.scopes = ps.scopes[:len(ps.scopes)-1]
		}

		t := ps.toks[i]
		if t.kind != tokName {
			continue
		}

		switch t.text {
		case "class", "define", "plan":
			stmt, closeIdx, ok := ps.declaration(i)
			if !ok {
				continue
			}
			out = append(out, stmt)
			if stmt.Kind == statement.KindClass {
				ps.scopes = append(ps.scopes, scope{name: stmt.Name, close: closeIdx})
			}
		case "type":
			if stmt, ok := ps.typeAlias(i); ok {
				out = append(out, stmt)
			}
		}
	}
	return out
}

func (ps *parseState) tok(i int) token {
	if i < len(ps.toks) {
		return ps.toks[i]
	}
	return token{kind: tokPunct}
}

func (ps *parseState) isPunct(i int, text string) bool {
	return ps.tok(i).is(tokPunct, text)
}

// declaration recognizes KEYWORD NAME [(params)] [inherits PARENT] { ... }.
func (ps *parseState) declaration(i int) (statement.Statement, int, bool) {
	kw := ps.toks[i]
	nameTok := ps.tok(i + 1)
	if nameTok.kind != tokName {
		return statement.Statement{}, 0, false
	}

	stmt := statement.Statement{
		Kind: keywordKind(kw.text),
		Name: ps.qualify(nameTok.text, kw.text),
		File: ps.file,
		Line: kw.line,
	}

	j := i + 2
	if ps.isPunct(j, "(") {
		stmt.Parameters = ps.parameters(j+1, ps.match[j])
		j = ps.match[j] + 1
	}
	if kw.text == "class" && ps.tok(j).is(tokName, "inherits") {
		parent := ps.tok(j + 1)
		if parent.kind != tokName && parent.kind != tokTypeName {
			return statement.Statement{}, 0, false
		}
		stmt.ParentClass = strings.TrimPrefix(parent.text, "::")
		j += 2
	}
	if !ps.isPunct(j, "{") {
		return statement.Statement{}, 0, false
	}

	closeIdx := ps.match[j]
	stmt.Source = ps.src[kw.start:ps.toks[closeIdx].end]
	stmt.Docstring = ps.docstringAbove(kw.line)
	return stmt, closeIdx, true
}

func keywordKind(kw string) statement.Kind {
	switch kw {
	case "class":
		return statement.KindClass
	case "define":
		return statement.KindDefinedType
	default:
		return statement.KindPlan
	}
}

// qualify resolves a class or defined type name declared inside a class
// body relative to the enclosing class.
func (ps *parseState) qualify(name, kw string) string {
	if strings.HasPrefix(name, "::") {
		return strings.TrimPrefix(name, "::")
	}
	if kw == "plan" || len(ps.scopes) == 0 {
		return name
	}
	return ps.scopes[len(ps.scopes)-1].name + "::" + name
}

// parameters parses the parameter list between token indexes from and to
// (exclusive).
func (ps *parseState) parameters(from, to int) []statement.Parameter {
	var params []statement.Parameter

	start := from
	for i := from; i < to; i++ {
		t := ps.toks[i]
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(", "[", "{":
			i = ps.match[i]
		case ",":
			if p, ok := ps.parameter(start, i); ok {
				params = append(params, p)
			}
			start = i + 1
		}
	}
	if p, ok := ps.parameter(start, to); ok {
		params = append(params, p)
	}
	return params
}

// parameter parses "[TYPE] [*]$name [= DEFAULT]" from tokens [a, b).
func (ps *parseState) parameter(a, b int) (statement.Parameter, bool) {
	v := -1
	for i := a; i < b; i++ {
		t := ps.toks[i]
		if t.kind == tokPunct {
			switch t.text {
			case "(", "[", "{":
				i = ps.match[i]
				continue
			}
		}
		if t.kind == tokVariable {
			v = i
			break
		}
	}
	if v < 0 {
		return statement.Parameter{}, false
	}

	varTok := ps.toks[v]
	p := statement.Parameter{
		Name: strings.TrimPrefix(varTok.text, "$"),
		Line: varTok.line,
	}

	typeEnd := v - 1
	if typeEnd >= a && ps.toks[typeEnd].is(tokPunct, "*") {
		typeEnd--
	}
	if typeEnd >= a {
		p.Type = strings.TrimSpace(ps.src[ps.toks[a].start:ps.toks[typeEnd].end])
	}

	if v+1 < b && ps.toks[v+1].is(tokPunct, "=") && v+2 < b {
		def := strings.TrimSpace(ps.src[ps.toks[v+2].start:ps.toks[b-1].end])
		p.Default = &def
	}
	return p, true
}

// typeAlias recognizes "type Name = TypeExpression".
func (ps *parseState) typeAlias(i int) (statement.Statement, bool) {
	nameTok := ps.tok(i + 1)
	if nameTok.kind != tokTypeName || !ps.isPunct(i+2, "=") {
		return statement.Statement{}, false
	}

	first := i + 3
	if first >= len(ps.toks) {
		return statement.Statement{}, false
	}
	last := first
	switch t := ps.toks[first]; {
	case t.kind == tokTypeName:
		if ps.isPunct(first+1, "[") {
			last = ps.match[first+1]
		}
	case t.is(tokPunct, "{"), t.is(tokPunct, "["):
		last = ps.match[first]
	default:
		return statement.Statement{}, false
	}

	kw := ps.toks[i]
	return statement.Statement{
		Kind:      statement.KindDataTypeAlias,
		Name:      strings.TrimPrefix(nameTok.text, "::"),
		AliasOf:   ps.src[ps.toks[first].start:ps.toks[last].end],
		Docstring: ps.docstringAbove(kw.line),
		File:      ps.file,
		Line:      kw.line,
	}, true
}

// docstringAbove collects the contiguous block of whole-line '#' comments
// ending on the line before line.
func (ps *parseState) docstringAbove(line int) docstring.Docstring {
	var lines []string
	for l := line - 1; l > 0; l-- {
		c, ok := ps.comments[l]
		if !ok {
			break
		}
		lines = append(lines, c.text)
	}
	if len(lines) == 0 {
		return docstring.Docstring{}
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return docstring.Parse(strings.Join(lines, "\n"))
}
