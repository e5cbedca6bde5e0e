// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package handler turns parsed statements into registry entities.
package handler

import (
	"grimm.is/voxdoc/internal/diagnostic"
	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/extras"
	"grimm.is/voxdoc/internal/hiera"
	"grimm.is/voxdoc/internal/logging"
	"grimm.is/voxdoc/internal/registry"
	"grimm.is/voxdoc/internal/statement"
	"grimm.is/voxdoc/internal/task"
	"grimm.is/voxdoc/internal/validation"
)

// SummaryLimit is the recommended maximum length of an @summary tag.
const SummaryLimit = 140

// Options configures default resolution.
type Options struct {
	// Hiera supplies class parameter defaults. Nil disables lookups.
	Hiera *hiera.Resolver
	// Overrides maps "<entity>::<parameter>" to a Puppet literal that
	// replaces the parameter's default after Hiera resolution.
	Overrides map[string]string
}

// Handler registers statements for one run.
type Handler struct {
	reg       *registry.Registry
	diags     *diagnostic.Collector
	extras    *extras.Resolver
	tasks     *task.Validator
	hiera     *hiera.Resolver
	overrides map[string]string
	logger    *logging.Logger
}

// New creates a handler writing into reg and reporting into diags.
func New(reg *registry.Registry, diags *diagnostic.Collector, logger *logging.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logging.WithComponent("handler")
	}
	return &Handler{
		reg:       reg,
		diags:     diags,
		extras:    extras.New(reg, logger.WithComponent("extras")),
		tasks:     task.NewValidator(diags),
		hiera:     opts.Hiera,
		overrides: opts.Overrides,
		logger:    logger,
	}
}

// Handle registers one statement. Documentation problems are recorded as
// diagnostics; the returned error is reserved for internal failures.
func (h *Handler) Handle(stmt statement.Statement) error {
	switch stmt.Kind {
	case statement.KindClass, statement.KindDefinedType, statement.KindPlan:
		return h.puppetCode(stmt)
	case statement.KindDataTypeAlias:
		return h.alias(stmt)
	case statement.KindResourceType:
		return h.resourceType(stmt)
	case statement.KindTypeExtra:
		return h.typeExtra(stmt)
	case statement.KindTask:
		return h.task(stmt)
	default:
		return errors.At(errors.Errorf(errors.KindInternal, "unhandled statement kind %s", stmt.Kind), stmt.File, stmt.Line)
	}
}

func subjectOf(stmt statement.Statement) diagnostic.Subject {
	return diagnostic.Subject{File: stmt.File, Line: stmt.Line, Entity: stmt.Name}
}

// register creates or fetches the statement's entity and records where it
// was declared.
func (h *Handler) register(stmt statement.Statement, doc docstring.Docstring) (registry.Entity, error) {
	e, _, err := h.reg.CreateOrGet(stmt.Kind, stmt.Name, func() registry.Entity {
		return registry.NewEntity(stmt.Kind, stmt.Name)
	})
	if err != nil {
		return nil, err
	}
	for _, m := range []registry.Mutation{
		registry.SetLocation(stmt.File, stmt.Line),
		registry.SetDocstring(doc),
		registry.SetSource(stmt.Source),
	} {
		if err := h.reg.Decorate(e, m); err != nil {
			return nil, err
		}
	}
	h.checkSummary(stmt, doc)
	return e, nil
}

func (h *Handler) checkSummary(stmt statement.Statement, doc docstring.Docstring) {
	summary, ok := doc.Tag("summary")
	if !ok || len([]rune(summary.Text)) <= SummaryLimit {
		return
	}
	h.diags.Warn(errors.KindValidation, subjectOf(stmt),
		"The length of the summary for %s '%s' exceeds the recommended limit of %d characters.",
		stmt.Kind, stmt.Name, SummaryLimit)
}

func (h *Handler) puppetCode(stmt statement.Statement) error {
	if err := validation.ValidateQualifiedName(stmt.Name); err != nil {
		h.diags.Warn(errors.KindValidation, subjectOf(stmt), "%s", err.Error())
	}

	doc := h.checkParamTags(stmt)
	e, err := h.register(stmt, doc)
	if err != nil {
		return err
	}

	if stmt.Kind == statement.KindClass {
		if err := h.reg.Decorate(e, registry.SetInherits(stmt.ParentClass)); err != nil {
			return err
		}
	}
	for _, p := range stmt.Parameters {
		if err := h.reg.Decorate(e, registry.AddCodeParameter(p)); err != nil {
			return err
		}
	}

	if stmt.Kind == statement.KindClass && h.hiera.Enabled() {
		for _, p := range stmt.Parameters {
			literal, ok := h.hiera.DefaultFor(stmt.Name, p.Name)
			if !ok {
				continue
			}
			if err := h.reg.Decorate(e, registry.SetDefault(p.Name, literal)); err != nil {
				return err
			}
			h.logger.Debug("default from hiera", "class", stmt.Name, "parameter", p.Name, "value", literal)
		}
	}

	for _, p := range stmt.Parameters {
		literal, ok := h.overrides[stmt.Name+"::"+p.Name]
		if !ok {
			continue
		}
		if err := h.reg.Decorate(e, registry.SetDefault(p.Name, literal)); err != nil {
			return err
		}
	}
	return nil
}

// checkParamTags warns about parameters and @param tags that do not match
// up and returns the docstring with tag types taken from the declaration.
func (h *Handler) checkParamTags(stmt statement.Statement) docstring.Docstring {
	doc := docstring.Docstring{Text: stmt.Docstring.Text}
	documented := make(map[string]bool)

	for _, tag := range stmt.Docstring.Tags {
		if tag.TagName != "param" {
			doc.Tags = append(doc.Tags, tag)
			continue
		}
		subject := subjectOf(stmt)
		subject.Parameter = tag.Name

		param, ok := stmt.Parameter(tag.Name)
		if !ok {
			h.diags.Warn(errors.KindValidation, subject,
				"The @param tag for parameter '%s' has no matching parameter at %s:%d.", tag.Name, stmt.File, stmt.Line)
			doc.Tags = append(doc.Tags, tag)
			continue
		}
		documented[tag.Name] = true

		if len(tag.Types) > 0 && param.Type != "" {
			h.diags.Warn(errors.KindValidation, subject,
				"The @param tag for parameter '%s' should not contain a type specification near %s:%d: ignoring in favor of parameter type information.",
				tag.Name, stmt.File, stmt.Line)
		}
		switch {
		case param.Type != "":
			tag.Types = []string{param.Type}
		case len(tag.Types) == 0:
			tag.Types = []string{"Any"}
		}
		doc.Tags = append(doc.Tags, tag)
	}

	for _, p := range stmt.Parameters {
		if documented[p.Name] {
			continue
		}
		subject := subjectOf(stmt)
		subject.Parameter = p.Name
		h.diags.Warn(errors.KindValidation, subject,
			"Missing @param tag for parameter '%s' near %s:%d.", p.Name, stmt.File, stmt.Line)
	}
	return doc
}

func (h *Handler) alias(stmt statement.Statement) error {
	if err := validation.ValidateTypeName(stmt.Name); err != nil {
		h.diags.Warn(errors.KindValidation, subjectOf(stmt), "%s", err.Error())
	}
	e, err := h.register(stmt, stmt.Docstring)
	if err != nil {
		return err
	}
	return h.reg.Decorate(e, registry.SetAliasOf(stmt.AliasOf))
}

func (h *Handler) resourceType(stmt statement.Statement) error {
	if err := validation.ValidateSimpleName(stmt.Name); err != nil {
		h.diags.Warn(errors.KindValidation, subjectOf(stmt), "%s", err.Error())
	}
	e, err := h.register(stmt, stmt.Docstring)
	if err != nil {
		return err
	}
	decl := stmt.Type
	if decl == nil {
		return nil
	}

	var mutations []registry.Mutation
	for _, m := range decl.Properties {
		mutations = append(mutations, registry.AddProperty(m))
	}
	for _, m := range decl.Parameters {
		mutations = append(mutations, registry.AddParameter(m))
	}
	for _, m := range decl.Checks {
		mutations = append(mutations, registry.AddCheck(m))
	}
	for _, f := range decl.Features {
		mutations = append(mutations, registry.AddFeature(f))
	}
	for _, m := range mutations {
		if err := h.reg.Decorate(e, m); err != nil {
			if !h.conflict(stmt, err) {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) typeExtra(stmt statement.Statement) error {
	_, err := h.extras.Resolve(stmt)
	if err != nil && !h.conflict(stmt, err) {
		return err
	}
	return nil
}

// conflict records a member kind conflict as a warning and reports whether
// err was one.
func (h *Handler) conflict(stmt statement.Statement, err error) bool {
	if errors.GetKind(err) != errors.KindConflict {
		return false
	}
	subject := subjectOf(stmt)
	if p, ok := errors.GetAttributes(err)["parameter"].(string); ok {
		subject.Parameter = p
	}
	h.diags.Warn(errors.KindConflict, subject, "%s", err.Error())
	return true
}

func (h *Handler) task(stmt statement.Statement) error {
	if err := validation.ValidateSimpleName(stmt.Name); err != nil {
		h.diags.Warn(errors.KindValidation, subjectOf(stmt), "%s", err.Error())
	}
	h.tasks.Validate(stmt)

	e, err := h.register(stmt, stmt.Docstring)
	if err != nil {
		return err
	}
	if stmt.Task == nil {
		return nil
	}
	return h.reg.Decorate(e, registry.SetTaskMetadata(*stmt.Task))
}
