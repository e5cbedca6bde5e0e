// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package diagnostic collects the warnings and errors raised while a module
// is documented. Nothing reported here stops a run; the collector is the
// record of what was skipped or incomplete.
package diagnostic

import (
	"fmt"
	"strings"

	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/logging"
)

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warn"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Subject identifies what a diagnostic is about. Empty fields are unknown.
type Subject struct {
	File      string
	Line      int
	Entity    string
	Parameter string
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Severity Severity
	Kind     errors.Kind
	Subject  Subject
	Message  string
}

// String returns a formatted diagnostic line.
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", d.Severity)
	if d.Subject.File != "" {
		b.WriteString(" ")
		b.WriteString(d.Subject.File)
		if d.Subject.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Subject.Line)
		}
		b.WriteString(":")
	}
	b.WriteString(" ")
	b.WriteString(d.Message)
	return b.String()
}

// Collector accumulates diagnostics for one run and mirrors them to a logger.
type Collector struct {
	logger *logging.Logger
	items  []Diagnostic
}

// NewCollector creates a collector. A nil logger uses the default logger.
func NewCollector(logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Collector{logger: logger}
}

// Warn records a warning.
func (c *Collector) Warn(kind errors.Kind, subject Subject, format string, args ...any) {
	c.add(SeverityWarning, kind, subject, fmt.Sprintf(format, args...))
}

// Error records an error.
func (c *Collector) Error(kind errors.Kind, subject Subject, format string, args ...any) {
	c.add(SeverityError, kind, subject, fmt.Sprintf(format, args...))
}

// Info records an informational note.
func (c *Collector) Info(kind errors.Kind, subject Subject, format string, args ...any) {
	c.add(SeverityInfo, kind, subject, fmt.Sprintf(format, args...))
}

// Report records err as an error diagnostic. The subject is taken from the
// error's file, line, entity and parameter attributes.
func (c *Collector) Report(err error) {
	if err == nil {
		return
	}
	attrs := errors.GetAttributes(err)
	subject := Subject{}
	subject.File, subject.Line = errors.Location(err)
	if v, ok := attrs["entity"].(string); ok {
		subject.Entity = v
	}
	if v, ok := attrs["parameter"].(string); ok {
		subject.Parameter = v
	}
	c.add(SeverityError, errors.GetKind(err), subject, err.Error())
}

func (c *Collector) add(sev Severity, kind errors.Kind, subject Subject, msg string) {
	d := Diagnostic{Severity: sev, Kind: kind, Subject: subject, Message: msg}
	c.items = append(c.items, d)

	keyvals := []any{"kind", kind.String()}
	if subject.File != "" {
		keyvals = append(keyvals, "file", subject.File)
	}
	if subject.Line > 0 {
		keyvals = append(keyvals, "line", subject.Line)
	}
	if subject.Entity != "" {
		keyvals = append(keyvals, "entity", subject.Entity)
	}
	if subject.Parameter != "" {
		keyvals = append(keyvals, "parameter", subject.Parameter)
	}

	switch sev {
	case SeverityError:
		c.logger.Error(msg, keyvals...)
	case SeverityWarning:
		c.logger.Warn(msg, keyvals...)
	default:
		c.logger.Info(msg, keyvals...)
	}
}

// All returns every diagnostic in the order reported.
func (c *Collector) All() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns the diagnostics of one severity.
func (c *Collector) Filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns all warnings.
func (c *Collector) Warnings() []Diagnostic { return c.Filter(SeverityWarning) }

// Errors returns all errors.
func (c *Collector) Errors() []Diagnostic { return c.Filter(SeverityError) }

// HasErrors returns true if any error was recorded.
func (c *Collector) HasErrors() bool {
	return len(c.Errors()) > 0
}
