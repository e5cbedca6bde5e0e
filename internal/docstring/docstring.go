// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package docstring parses documentation comments into free text and tags.
//
// Tags follow the YARD convention used by Puppet module authors:
//
//	# Manages the circus tent.
//	#
//	# @summary Installs a tent
//	#
//	# @param size
//	#   How large the tent is.
//	# @param [Array[String]] acts The acts performed.
//	#
//	# @example Basic usage
//	#   include circus
//
// A tag's text continues on following lines that are indented more than the
// tag line itself.
package docstring

import (
	"strings"

	"grimm.is/voxdoc/internal/ordered"
)

// Tag is a single @tag entry.
type Tag struct {
	TagName string
	Text    string
	Name    string
	Types   []string
}

// Docstring is a parsed documentation comment.
type Docstring struct {
	Text string
	Tags []Tag
}

// tag shapes
const (
	shapeText = iota
	shapeTypes
	shapeTypesAndName
	shapeTitle
)

var tagShapes = map[string]int{
	"param":       shapeTypesAndName,
	"option":      shapeTypesAndName,
	"yieldparam":  shapeTypesAndName,
	"return":      shapeTypes,
	"raise":       shapeTypes,
	"yieldreturn": shapeTypes,
	"example":     shapeTitle,
}

// Parse parses raw comment text (comment markers already removed).
func Parse(raw string) Docstring {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(Dedent(raw), "\n")

	var (
		doc       Docstring
		text      []string
		current   *rawTag
		collected []*rawTag
	)

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		indent := len(line) - len(strings.TrimLeft(line, " \t"))

		if isTagLine(trimmed) {
			name, rest, _ := strings.Cut(trimmed[1:], " ")
			current = &rawTag{name: name, first: strings.TrimSpace(rest), indent: indent}
			collected = append(collected, current)
			continue
		}

		if current != nil {
			if trimmed == "" || indent > current.indent {
				current.body = append(current.body, line)
				continue
			}
			current = nil
		}
		text = append(text, line)
	}

	doc.Text = strings.TrimSpace(strings.Join(text, "\n"))
	for _, rt := range collected {
		doc.Tags = append(doc.Tags, rt.build())
	}
	return doc
}

type rawTag struct {
	name   string
	first  string
	indent int
	body   []string
}

func (rt *rawTag) build() Tag {
	tag := Tag{TagName: rt.name}
	body := strings.Trim(Dedent(strings.Join(rt.body, "\n")), "\n")
	body = strings.TrimRight(body, " \t\n")

	switch tagShapes[rt.name] {
	case shapeTitle:
		tag.Name = rt.first
		tag.Text = body
		return tag
	case shapeTypes:
		tag.Types, rt.first = parseTypes(rt.first)
	case shapeTypesAndName:
		tag.Types, rt.first = parseTypes(rt.first)
		tag.Name, rt.first = nextWord(rt.first)
		tag.Name = strings.TrimPrefix(tag.Name, "$")
		if tag.Types == nil {
			tag.Types, rt.first = parseTypes(rt.first)
		}
	}

	tag.Text = joinText(rt.first, body)
	return tag
}

func joinText(first, body string) string {
	first = strings.TrimSpace(first)
	switch {
	case first == "":
		return strings.TrimSpace(body)
	case body == "":
		return first
	default:
		return first + "\n" + body
	}
}

func isTagLine(trimmed string) bool {
	if len(trimmed) < 2 || trimmed[0] != '@' {
		return false
	}
	c := trimmed[1]
	return c >= 'a' && c <= 'z'
}

// parseTypes reads a leading "[A, B[C]]" list and returns the rest.
func parseTypes(s string) ([]string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") {
		return nil, s
	}

	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return splitTypes(s[1:i]), strings.TrimSpace(s[i+1:])
			}
		}
	}
	return nil, s
}

// splitTypes splits on top-level commas only, so "Hash[String, Integer]"
// stays one type.
func splitTypes(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				out = appendType(out, s[start:i])
				start = i + 1
			}
		}
	}
	return appendType(out, s[start:])
}

func appendType(out []string, t string) []string {
	t = strings.TrimSpace(t)
	if t == "" {
		return out
	}
	return append(out, t)
}

func nextWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	word, rest, _ := strings.Cut(s, " ")
	return word, strings.TrimSpace(rest)
}

// Dedent removes the common leading whitespace of all non-blank lines.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= prefix {
			lines[i] = line[prefix:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// IsEmpty reports whether there is neither text nor tags.
func (d Docstring) IsEmpty() bool {
	return d.Text == "" && len(d.Tags) == 0
}

// TagsNamed returns every tag with the given name.
func (d Docstring) TagsNamed(name string) []Tag {
	var out []Tag
	for _, t := range d.Tags {
		if t.TagName == name {
			out = append(out, t)
		}
	}
	return out
}

// Tag returns the first tag with the given name.
func (d Docstring) Tag(name string) (Tag, bool) {
	for _, t := range d.Tags {
		if t.TagName == name {
			return t, true
		}
	}
	return Tag{}, false
}

// Equal reports whether two docstrings carry the same text and tags.
func (d Docstring) Equal(o Docstring) bool {
	if d.Text != o.Text || len(d.Tags) != len(o.Tags) {
		return false
	}
	for i := range d.Tags {
		if !d.Tags[i].equal(o.Tags[i]) {
			return false
		}
	}
	return true
}

func (t Tag) equal(o Tag) bool {
	if t.TagName != o.TagName || t.Text != o.Text || t.Name != o.Name || len(t.Types) != len(o.Types) {
		return false
	}
	for i := range t.Types {
		if t.Types[i] != o.Types[i] {
			return false
		}
	}
	return true
}

// ToHash converts the docstring to its serialized form.
func (d Docstring) ToHash() *ordered.Map {
	h := ordered.New()
	h.Set("text", d.Text)
	if len(d.Tags) > 0 {
		tags := make([]any, 0, len(d.Tags))
		for _, t := range d.Tags {
			tags = append(tags, t.ToHash())
		}
		h.Set("tags", tags)
	}
	return h
}

// ToHash converts the tag to its serialized form.
func (t Tag) ToHash() *ordered.Map {
	h := ordered.New()
	h.Set("tag_name", t.TagName)
	if t.Text != "" {
		h.Set("text", t.Text)
	}
	if t.Name != "" {
		h.Set("name", t.Name)
	}
	if len(t.Types) > 0 {
		types := make([]any, 0, len(t.Types))
		for _, ty := range t.Types {
			types = append(types, ty)
		}
		h.Set("types", types)
	}
	return h
}
