// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package task checks that task metadata documents itself.
package task

import (
	"grimm.is/voxdoc/internal/diagnostic"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

// Validator reports missing task and parameter descriptions.
type Validator struct {
	diags *diagnostic.Collector
}

// NewValidator creates a validator that records into diags.
func NewValidator(diags *diagnostic.Collector) *Validator {
	return &Validator{diags: diags}
}

// Validate checks stmt and returns the number of warnings it raised.
// Warnings never prevent the task from being registered.
func (v *Validator) Validate(stmt statement.Statement) int {
	meta := stmt.Task
	if meta == nil {
		return 0
	}

	warnings := 0
	subject := diagnostic.Subject{File: stmt.File, Line: stmt.Line, Entity: stmt.Name}

	if meta.Description == nil {
		v.diags.Warn(errors.KindValidation, subject, "Missing a description for Puppet Task (%s).", stmt.File)
		warnings++
	}
	for _, p := range meta.Parameters {
		if p.Description != nil {
			continue
		}
		ps := subject
		ps.Parameter = p.Name
		v.diags.Warn(errors.KindValidation, ps, "Missing description for param '%s' in Puppet Task (%s).", p.Name, stmt.File)
		warnings++
	}
	return warnings
}
