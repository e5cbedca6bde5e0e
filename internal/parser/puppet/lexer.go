// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package puppet

import (
	"strings"

	"grimm.is/voxdoc/internal/errors"
)

type tokenKind int

const (
	tokName     tokenKind = iota // lowercase qualified name or keyword
	tokTypeName                  // capitalized qualified name
	tokVariable                  // $name
	tokString
	tokNumber
	tokRegex
	tokPunct
)

type token struct {
	kind  tokenKind
	text  string
	start int // byte offset of first char
	end   int // byte offset after last char
	line  int
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

type comment struct {
	text    string // without the leading '#'
	line    int
	ownLine bool // nothing but whitespace precedes it on its line
}

// operators are matched longest first.
var operators = []string{
	"<<|", "|>>",
	"=>", "==", "!=", "=~", "!~", "<=", ">=", "->", "~>", "<-", "<~", "+>", "<|", "|>", "<<", ">>", "@@", "::",
}

type lexer struct {
	src      string
	pos      int
	line     int
	tokens   []token
	comments []comment
	pending  []heredoc
}

type heredoc struct {
	tag  string
	line int
}

func lex(src string) ([]token, []comment, error) {
	lx := &lexer{src: src, line: 1}
	if err := lx.run(); err != nil {
		return nil, nil, err
	}
	return lx.tokens, lx.comments, nil
}

func (lx *lexer) errorf(line int, format string, args ...any) error {
	return errors.At(errors.Errorf(errors.KindParse, format, args...), "", line)
}

func (lx *lexer) run() error {
	var stack []token

	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]

		switch {
		case c == '\n':
			lx.pos++
			lx.line++
			if len(lx.pending) > 0 {
				if err := lx.skipHeredocBodies(); err != nil {
					return err
				}
			}

		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++

		case c == '#':
			lx.lexLineComment()

		case c == '/' && lx.peek(1) == '*':
			if err := lx.lexBlockComment(); err != nil {
				return err
			}

		case c == '\'' || c == '"':
			if err := lx.lexString(c); err != nil {
				return err
			}

		case c == '@' && lx.peek(1) == '(':
			if err := lx.lexHeredocStart(); err != nil {
				return err
			}

		case c == '$':
			lx.lexVariable()

		case c == '/' && lx.regexAllowed():
			if !lx.lexRegex() {
				lx.emit(tokPunct, lx.pos, lx.pos+1)
				lx.pos++
			}

		case isDigit(c):
			lx.lexNumber()

		case isLetter(c) || (c == ':' && lx.peek(1) == ':' && isLetter(lx.peek(2))):
			lx.lexName()

		default:
			start := lx.pos
			text := lx.matchOperator()
			lx.pos += len(text)
			tok := lx.emit(tokPunct, start, lx.pos)

			switch text {
			case "(", "[", "{":
				stack = append(stack, tok)
			case ")", "]", "}":
				if len(stack) == 0 {
					return lx.errorf(tok.line, "unexpected '%s' on line %d", text, tok.line)
				}
				open := stack[len(stack)-1]
				if closer(open.text) != text {
					return lx.errorf(tok.line, "mismatched '%s' on line %d (opened with '%s' on line %d)", text, tok.line, open.text, open.line)
				}
				stack = stack[:len(stack)-1]
			}
		}
	}

	if len(lx.pending) > 0 {
		h := lx.pending[0]
		return lx.errorf(h.line, "unterminated heredoc '%s' starting on line %d", h.tag, h.line)
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return lx.errorf(open.line, "unclosed '%s' opened on line %d", open.text, open.line)
	}
	return nil
}

func closer(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	default:
		return "}"
	}
}

func (lx *lexer) peek(n int) byte {
	if lx.pos+n < len(lx.src) {
		return lx.src[lx.pos+n]
	}
	return 0
}

func (lx *lexer) emit(kind tokenKind, start, end int) token {
	tok := token{kind: kind, text: lx.src[start:end], start: start, end: end, line: lx.line}
	lx.tokens = append(lx.tokens, tok)
	return tok
}

func (lx *lexer) matchOperator() string {
	rest := lx.src[lx.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			return op
		}
	}
	return rest[:1]
}

func (lx *lexer) lexLineComment() {
	start := lx.pos
	ownLine := true
	for i := start - 1; i >= 0 && lx.src[i] != '\n'; i-- {
		if lx.src[i] != ' ' && lx.src[i] != '\t' {
			ownLine = false
			break
		}
	}

	end := strings.IndexByte(lx.src[start:], '\n')
	if end < 0 {
		end = len(lx.src)
	} else {
		end += start
	}
	lx.comments = append(lx.comments, comment{
		text:    strings.TrimRight(lx.src[start+1:end], "\r"),
		line:    lx.line,
		ownLine: ownLine,
	})
	lx.pos = end
}

func (lx *lexer) lexBlockComment() error {
	startLine := lx.line
	end := strings.Index(lx.src[lx.pos+2:], "*/")
	if end < 0 {
		return lx.errorf(startLine, "unterminated comment starting on line %d", startLine)
	}
	body := lx.src[lx.pos : lx.pos+2+end+2]
	lx.line += strings.Count(body, "\n")
	lx.pos += len(body)
	return nil
}

// lexString consumes a quoted string. Double-quoted strings may contain
// ${...} interpolations, which can themselves hold strings and braces.
func (lx *lexer) lexString(quote byte) error {
	start := lx.pos
	startLine := lx.line
	lx.pos++
	if err := lx.skipStringBody(quote, startLine); err != nil {
		return err
	}
	tok := token{kind: tokString, text: lx.src[start:lx.pos], start: start, end: lx.pos, line: startLine}
	lx.tokens = append(lx.tokens, tok)
	return nil
}

func (lx *lexer) skipStringBody(quote byte, startLine int) error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\\':
			if lx.peek(1) == '\n' {
				lx.line++
			}
			lx.pos += 2
		case c == quote:
			lx.pos++
			return nil
		case c == '\n':
			lx.line++
			lx.pos++
		case quote == '"' && c == '$' && lx.peek(1) == '{':
			lx.pos += 2
			if err := lx.skipInterpolation(startLine); err != nil {
				return err
			}
		default:
			lx.pos++
		}
	}
	return lx.errorf(startLine, "unterminated string starting on line %d", startLine)
}

func (lx *lexer) skipInterpolation(startLine int) error {
	depth := 1
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case '{':
			depth++
			lx.pos++
		case '}':
			depth--
			lx.pos++
			if depth == 0 {
				return nil
			}
		case '\'', '"':
			lx.pos++
			if err := lx.skipStringBody(c, startLine); err != nil {
				return err
			}
		case '\n':
			lx.line++
			lx.pos++
		default:
			lx.pos++
		}
	}
	return lx.errorf(startLine, "unterminated string starting on line %d", startLine)
}

// lexHeredocStart consumes @("TAG") / @(TAG:syntax/flags). The body starts
// on the next line and is skipped when the lexer reaches it.
func (lx *lexer) lexHeredocStart() error {
	start := lx.pos
	end := strings.IndexByte(lx.src[start:], ')')
	nl := strings.IndexByte(lx.src[start:], '\n')
	if end < 0 || (nl >= 0 && nl < end) {
		return lx.errorf(lx.line, "malformed heredoc on line %d", lx.line)
	}

	spec := lx.src[start+2 : start+end]
	tag, _, _ := strings.Cut(spec, ":")
	tag, _, _ = strings.Cut(tag, "/")
	tag = strings.Trim(strings.TrimSpace(tag), `"`)
	if tag == "" {
		return lx.errorf(lx.line, "malformed heredoc on line %d", lx.line)
	}

	lx.pending = append(lx.pending, heredoc{tag: tag, line: lx.line})
	lx.pos = start + end + 1
	tok := token{kind: tokString, text: lx.src[start:lx.pos], start: start, end: lx.pos, line: lx.line}
	lx.tokens = append(lx.tokens, tok)
	return nil
}

func (lx *lexer) skipHeredocBodies() error {
	for len(lx.pending) > 0 {
		h := lx.pending[0]
		for {
			if lx.pos >= len(lx.src) {
				return lx.errorf(h.line, "unterminated heredoc '%s' starting on line %d", h.tag, h.line)
			}
			end := strings.IndexByte(lx.src[lx.pos:], '\n')
			var line string
			if end < 0 {
				line = lx.src[lx.pos:]
				lx.pos = len(lx.src)
			} else {
				line = lx.src[lx.pos : lx.pos+end]
				lx.pos += end + 1
				lx.line++
			}
			if isHeredocEnd(line, h.tag) {
				break
			}
		}
		lx.pending = lx.pending[1:]
	}
	return nil
}

// isHeredocEnd matches "  |- TAG" style end markers.
func isHeredocEnd(line, tag string) bool {
	s := strings.TrimSpace(strings.TrimRight(line, "\r"))
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	return strings.TrimSpace(s) == tag
}

func (lx *lexer) lexVariable() {
	start := lx.pos
	lx.pos++
	if strings.HasPrefix(lx.src[lx.pos:], "::") {
		lx.pos += 2
	}
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isWord(c) {
			lx.pos++
			continue
		}
		if c == ':' && lx.peek(1) == ':' && isWord(lx.peek(2)) {
			lx.pos += 2
			continue
		}
		break
	}
	kind := tokVariable
	if lx.pos == start+1 {
		kind = tokPunct
	}
	lx.emit(kind, start, lx.pos)
}

func (lx *lexer) lexName() {
	start := lx.pos
	if strings.HasPrefix(lx.src[lx.pos:], "::") {
		lx.pos += 2
	}
	upper := isUpper(lx.src[lx.pos])
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isWord(c) {
			lx.pos++
			continue
		}
		if c == ':' && lx.peek(1) == ':' && isLetter(lx.peek(2)) {
			lx.pos += 2
			continue
		}
		break
	}
	kind := tokName
	if upper {
		kind = tokTypeName
	}
	lx.emit(kind, start, lx.pos)
}

func (lx *lexer) lexNumber() {
	start := lx.pos
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if isWord(c) || c == '.' && isDigit(lx.peek(1)) {
			lx.pos++
			continue
		}
		if (c == '+' || c == '-') && (lx.src[lx.pos-1] == 'e' || lx.src[lx.pos-1] == 'E') {
			lx.pos++
			continue
		}
		break
	}
	lx.emit(tokNumber, start, lx.pos)
}

// regexAllowed reports whether a '/' at the current position starts a
// regex rather than a division.
func (lx *lexer) regexAllowed() bool {
	if len(lx.tokens) == 0 {
		return true
	}
	prev := lx.tokens[len(lx.tokens)-1]
	switch prev.kind {
	case tokVariable, tokNumber, tokString, tokTypeName, tokRegex:
		return false
	case tokName:
		return prev.text == "node" || prev.text == "and" || prev.text == "or" || prev.text == "in"
	}
	switch prev.text {
	case ")", "]", "}":
		return false
	}
	return true
}

func (lx *lexer) lexRegex() bool {
	start := lx.pos
	i := lx.pos + 1
	for i < len(lx.src) {
		switch lx.src[i] {
		case '\\':
			i += 2
			continue
		case '\n':
			return false
		case '/':
			lx.pos = i + 1
			lx.emit(tokRegex, start, lx.pos)
			return true
		}
		i++
	}
	return false
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLetter(c byte) bool { return isLower(c) || isUpper(c) || c == '_' }
func isWord(c byte) bool   { return isLetter(c) || isDigit(c) }
