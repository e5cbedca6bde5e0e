// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package parser is the boundary between raw source files and statements.
// Each source dialect lives in its own subpackage and implements Dialect;
// Set picks the dialect by file extension and turns parse failures into
// diagnostics so one bad file never stops a run.
package parser

import (
	"path/filepath"
	"sort"
	"strings"

	"grimm.is/voxdoc/internal/diagnostic"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

// Dialect produces statements from one source language.
type Dialect interface {
	Name() string
	Parse(source []byte, filename string) ([]statement.Statement, error)
}

// Set maps file extensions to dialects.
type Set struct {
	byExt map[string]Dialect
	diags *diagnostic.Collector
}

// NewSet creates an empty set reporting to diags.
func NewSet(diags *diagnostic.Collector) *Set {
	return &Set{byExt: make(map[string]Dialect), diags: diags}
}

// Register binds a dialect to one or more extensions (with leading dot).
func (s *Set) Register(d Dialect, exts ...string) {
	for _, ext := range exts {
		s.byExt[strings.ToLower(ext)] = d
	}
}

// DialectFor returns the dialect responsible for filename.
func (s *Set) DialectFor(filename string) (Dialect, bool) {
	d, ok := s.byExt[strings.ToLower(filepath.Ext(filename))]
	return d, ok
}

// Extensions returns the registered extensions, sorted.
func (s *Set) Extensions() []string {
	exts := make([]string, 0, len(s.byExt))
	for ext := range s.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse parses one file. A file with no registered dialect yields nothing.
// A parse error yields no statements and exactly one error diagnostic naming
// the file; the error is returned only so callers can count failures and
// must not be reported again. The returned dialect name is empty when no
// dialect handled the file.
func (s *Set) Parse(filename string, source []byte) ([]statement.Statement, string, error) {
	d, ok := s.DialectFor(filename)
	if !ok {
		return nil, "", nil
	}

	stmts, err := d.Parse(source, filename)
	if err != nil {
		_, line := errors.Location(err)
		s.diags.Error(errors.KindParse, diagnostic.Subject{File: filename, Line: line},
			"Failed to parse %s: %s", filename, err.Error())
		return nil, d.Name(), err
	}
	return stmts, d.Name(), nil
}
