// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package taskjson parses Bolt task metadata files (tasks/<name>.json).
package taskjson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/ordered"
	"grimm.is/voxdoc/internal/statement"
)

// Parser is the task metadata dialect.
type Parser struct{}

// New creates a task metadata parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the dialect name.
func (p *Parser) Name() string {
	return "taskjson"
}

// Parse decodes one JSON object. An empty object yields no statement.
func (p *Parser) Parse(source []byte, filename string) ([]statement.Statement, error) {
	doc, err := Decode(source)
	if err != nil {
		return nil, errors.At(err, filename, 0)
	}
	if doc.Len() == 0 {
		return nil, nil
	}

	meta := metadata(doc)
	return []statement.Statement{{
		Kind:      statement.KindTask,
		Name:      TaskName(filename),
		Docstring: meta.docstring(),
		Source:    string(source),
		File:      filename,
		Line:      1,
		Task:      meta.TaskMetadata,
	}}, nil
}

// TaskName derives the task name from its metadata file name.
func TaskName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
}

// Decode parses a JSON object preserving key order. Anything other than a
// single object, including trailing data, is an error.
func Decode(source []byte) (*ordered.Map, error) {
	dec := json.NewDecoder(bytes.NewReader(source))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, syntaxError(source, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.At(errors.New(errors.KindParse, "task metadata must be a JSON object"), "", 1)
	}

	doc, err := decodeObject(dec)
	if err != nil {
		return nil, syntaxError(source, err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		line := lineAt(source, dec.InputOffset())
		return nil, errors.At(errors.Errorf(errors.KindParse, "unexpected data after JSON object on line %d", line), "", line)
	}
	return doc, nil
}

func decodeObject(dec *json.Decoder) (*ordered.Map, error) {
	m := ordered.New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		m.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			var list []any
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if list == nil {
				list = []any{}
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return t, nil
	}
}

func syntaxError(source []byte, err error) error {
	line := 1
	var se *json.SyntaxError
	if errors.As(err, &se) {
		line = lineAt(source, se.Offset)
	} else if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		line = lineAt(source, int64(len(source)))
		err = io.ErrUnexpectedEOF
	}
	return errors.At(errors.Wrapf(err, errors.KindParse, "invalid JSON on line %d", line), "", line)
}

func lineAt(source []byte, offset int64) int {
	if offset > int64(len(source)) {
		offset = int64(len(source))
	}
	return bytes.Count(source[:offset], []byte("\n")) + 1
}

type taskMeta struct {
	*statement.TaskMetadata
}

func metadata(doc *ordered.Map) taskMeta {
	meta := taskMeta{&statement.TaskMetadata{}}

	if v, ok := doc.Get("description"); ok {
		if s, ok := v.(string); ok {
			meta.Description = &s
		}
	}
	if v, ok := doc.Get("supports_noop"); ok {
		meta.SupportsNoop, _ = v.(bool)
	}
	if v, ok := doc.Get("input_method"); ok {
		meta.InputMethod, _ = v.(string)
	}

	params, _ := doc.Get("parameters")
	pm, ok := params.(*ordered.Map)
	if !ok {
		return meta
	}
	for _, name := range pm.Keys() {
		p := statement.TaskParameter{Name: name}
		v, _ := pm.Get(name)
		if spec, ok := v.(*ordered.Map); ok {
			if d, ok := spec.Get("description"); ok {
				if s, ok := d.(string); ok {
					p.Description = &s
				}
			}
			if t, ok := spec.Get("type"); ok {
				p.Type, _ = t.(string)
			}
			if s, ok := spec.Get("sensitive"); ok {
				p.Sensitive, _ = s.(bool)
			}
		}
		meta.Parameters = append(meta.Parameters, p)
	}
	return meta
}

// docstring renders the metadata as documentation text plus @param tags.
func (m taskMeta) docstring() docstring.Docstring {
	var doc docstring.Docstring
	if m.Description != nil {
		doc.Text = *m.Description
	}
	for _, p := range m.Parameters {
		tag := docstring.Tag{TagName: "param", Name: p.Name}
		if p.Description != nil {
			tag.Text = *p.Description
		}
		if p.Type != "" {
			tag.Types = []string{p.Type}
		}
		doc.Tags = append(doc.Tags, tag)
	}
	return doc
}
