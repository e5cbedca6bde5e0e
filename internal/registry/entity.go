// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package registry

import (
	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/ordered"
	"grimm.is/voxdoc/internal/statement"
)

// Entity is a documented code object.
type Entity interface {
	Kind() statement.Kind
	Name() string
	Common() *Base
	ToHash() *ordered.Map
}

// Base holds the fields every entity has.
type Base struct {
	name      string
	File      string
	Line      int
	Docstring docstring.Docstring
	Source    string
}

// Name returns the qualified name.
func (b *Base) Name() string { return b.name }

// Common returns the common fields for in-place edits.
func (b *Base) Common() *Base { return b }

func (b *Base) hash() *ordered.Map {
	h := ordered.New()
	h.Set("name", b.name)
	h.Set("file", b.File)
	h.Set("line", b.Line)
	h.Set("docstring", b.Docstring.ToHash())
	return h
}

func (b *Base) setSource(h *ordered.Map) {
	if b.Source != "" {
		h.Set("source", b.Source)
	}
}

// puppetCode is the shape shared by classes, defined types and plans.
type puppetCode struct {
	Base
	Parameters []statement.Parameter
}

func (p *puppetCode) parameter(name string) *statement.Parameter {
	for i := range p.Parameters {
		if p.Parameters[i].Name == name {
			return &p.Parameters[i]
		}
	}
	return nil
}

// Defaults returns parameter name to default literal for every parameter
// with a default, in declaration order.
func (p *puppetCode) Defaults() *ordered.Map {
	m := ordered.New()
	for _, param := range p.Parameters {
		if param.Default != nil {
			m.Set(param.Name, *param.Default)
		}
	}
	return m
}

func (p *puppetCode) finishHash(h *ordered.Map) *ordered.Map {
	if d := p.Defaults(); d.Len() > 0 {
		h.Set("defaults", d)
	}
	p.setSource(h)
	return h
}

// Class is a Puppet class.
type Class struct {
	puppetCode
	Inherits string
}

// NewClass creates an empty class entity.
func NewClass(name string) *Class {
	return &Class{puppetCode: puppetCode{Base: Base{name: name}}}
}

func (c *Class) Kind() statement.Kind { return statement.KindClass }

func (c *Class) ToHash() *ordered.Map {
	h := c.hash()
	if c.Inherits != "" {
		h.Set("inherits", c.Inherits)
	}
	return c.finishHash(h)
}

// DefinedType is a Puppet defined type.
type DefinedType struct {
	puppetCode
}

// NewDefinedType creates an empty defined type entity.
func NewDefinedType(name string) *DefinedType {
	return &DefinedType{puppetCode{Base: Base{name: name}}}
}

func (d *DefinedType) Kind() statement.Kind { return statement.KindDefinedType }

func (d *DefinedType) ToHash() *ordered.Map {
	return d.finishHash(d.hash())
}

// Plan is a Puppet plan.
type Plan struct {
	puppetCode
}

// NewPlan creates an empty plan entity.
func NewPlan(name string) *Plan {
	return &Plan{puppetCode{Base: Base{name: name}}}
}

func (p *Plan) Kind() statement.Kind { return statement.KindPlan }

func (p *Plan) ToHash() *ordered.Map {
	return p.finishHash(p.hash())
}

// DataTypeAlias is a Puppet type alias.
type DataTypeAlias struct {
	Base
	AliasOf string
}

// NewDataTypeAlias creates an empty alias entity.
func NewDataTypeAlias(name string) *DataTypeAlias {
	return &DataTypeAlias{Base: Base{name: name}}
}

func (a *DataTypeAlias) Kind() statement.Kind { return statement.KindDataTypeAlias }

// ToHash always carries alias_of, even when empty.
func (a *DataTypeAlias) ToHash() *ordered.Map {
	h := a.hash()
	h.Set("alias_of", a.AliasOf)
	a.setSource(h)
	return h
}

// ResourceType is a resource type declared in Ruby.
type ResourceType struct {
	Base
	Properties []statement.Member
	Parameters []statement.Member
	Checks     []statement.Member
	Features   []statement.Feature
}

// NewResourceType creates an empty resource type entity.
func NewResourceType(name string) *ResourceType {
	return &ResourceType{Base: Base{name: name}}
}

func (t *ResourceType) Kind() statement.Kind { return statement.KindResourceType }

// Namevar returns the parameter that names instances of the type.
func (t *ResourceType) Namevar() string {
	return DefaultNamevar(t.Parameters)
}

// DefaultNamevar picks the namevar of a parameter list: the parameter
// explicitly marked as namevar, else the one called "name", else the first
// parameter the type declares itself, else the first extension-added one.
// An empty list has no namevar.
func DefaultNamevar(params []statement.Member) string {
	for _, p := range params {
		if p.Namevar {
			return p.Name
		}
	}
	for _, p := range params {
		if p.Name == "name" {
			return p.Name
		}
	}
	for _, p := range params {
		if !p.Extra {
			return p.Name
		}
	}
	if len(params) > 0 {
		return params[0].Name
	}
	return ""
}

func (t *ResourceType) ToHash() *ordered.Map {
	h := t.hash()
	t.setSource(h)

	if len(t.Properties) > 0 {
		h.Set("properties", membersHash(t.Properties, ""))
	}
	if len(t.Parameters) > 0 {
		h.Set("parameters", membersHash(t.Parameters, t.Namevar()))
	}
	if len(t.Checks) > 0 {
		h.Set("checks", membersHash(t.Checks, ""))
	}
	if len(t.Features) > 0 {
		list := make([]*ordered.Map, 0, len(t.Features))
		for _, f := range t.Features {
			fh := ordered.New()
			fh.Set("name", f.Name)
			if f.Description != "" {
				fh.Set("description", f.Description)
			}
			if len(f.Methods) > 0 {
				fh.Set("methods", f.Methods)
			}
			list = append(list, fh)
		}
		h.Set("features", list)
	}
	return h
}

func membersHash(members []statement.Member, namevar string) []*ordered.Map {
	out := make([]*ordered.Map, 0, len(members))
	for _, m := range members {
		mh := ordered.New()
		mh.Set("name", m.Name)
		if m.Description != "" {
			mh.Set("description", m.Description)
		}
		if len(m.Values) > 0 {
			mh.Set("values", m.Values)
		}
		if m.Default != nil {
			mh.Set("default", *m.Default)
		}
		if m.Namevar || (namevar != "" && m.Name == namevar) {
			mh.Set("isnamevar", true)
		}
		out = append(out, mh)
	}
	return out
}

// Task is a Bolt task described by its metadata file.
type Task struct {
	Base
	Metadata statement.TaskMetadata
}

// NewTask creates an empty task entity.
func NewTask(name string) *Task {
	return &Task{Base: Base{name: name}}
}

func (t *Task) Kind() statement.Kind { return statement.KindTask }

func (t *Task) ToHash() *ordered.Map {
	h := t.hash()
	t.setSource(h)
	h.Set("supports_noop", t.Metadata.SupportsNoop)
	if t.Metadata.InputMethod != "" {
		h.Set("input_method", t.Metadata.InputMethod)
	}
	return h
}

// NewEntity creates an empty entity of kind, or nil for kinds that never
// become entities.
func NewEntity(kind statement.Kind, name string) Entity {
	switch kind {
	case statement.KindClass:
		return NewClass(name)
	case statement.KindDefinedType:
		return NewDefinedType(name)
	case statement.KindPlan:
		return NewPlan(name)
	case statement.KindDataTypeAlias:
		return NewDataTypeAlias(name)
	case statement.KindResourceType:
		return NewResourceType(name)
	case statement.KindTask:
		return NewTask(name)
	default:
		return nil
	}
}
