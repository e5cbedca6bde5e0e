// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package registry holds the code objects documented in one run.
//
// Entities are keyed by kind and qualified name. A declaration creates its
// entity on first sight; any later statement naming the same entity
// decorates it instead, so the final registry does not depend on the order
// files were processed in. A Registry is owned by a single run and is not
// safe for concurrent use.
package registry

import (
	"sort"

	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

// Group collects the entities of one kind.
type Group struct {
	kind        statement.Kind
	key         string
	displayName string

	names    []string
	entities map[string]Entity
}

// NewGroup creates an empty group for kind.
func NewGroup(kind statement.Kind, key, displayName string) *Group {
	return &Group{
		kind:        kind,
		key:         key,
		displayName: displayName,
		entities:    make(map[string]Entity),
	}
}

// Kind returns the entity kind the group holds.
func (g *Group) Kind() statement.Kind { return g.kind }

// Key returns the group's key in the hash document.
func (g *Group) Key() string { return g.key }

// DisplayName returns the human-readable group name.
func (g *Group) DisplayName() string { return g.displayName }

// Len returns the number of entities in the group.
func (g *Group) Len() int { return len(g.names) }

// Get returns the entity with the given qualified name.
func (g *Group) Get(name string) (Entity, bool) {
	e, ok := g.entities[name]
	return e, ok
}

// Entities returns the group's entities sorted by name.
func (g *Group) Entities() []Entity {
	names := make([]string, len(g.names))
	copy(names, g.names)
	sort.Strings(names)

	out := make([]Entity, 0, len(names))
	for _, n := range names {
		out = append(out, g.entities[n])
	}
	return out
}

func (g *Group) add(e Entity) {
	g.names = append(g.names, e.Name())
	g.entities[e.Name()] = e
}

func (g *Group) reset() {
	g.names = nil
	g.entities = make(map[string]Entity)
}

// DefaultGroups returns fresh groups for every entity kind, in document
// order.
func DefaultGroups() []*Group {
	return []*Group{
		NewGroup(statement.KindClass, "puppet_classes", "Puppet Classes"),
		NewGroup(statement.KindDefinedType, "defined_types", "Defined Types"),
		NewGroup(statement.KindResourceType, "resource_types", "Resource Types"),
		NewGroup(statement.KindDataTypeAlias, "data_type_aliases", "Puppet Data Type Aliases"),
		NewGroup(statement.KindTask, "puppet_tasks", "Puppet Tasks"),
		NewGroup(statement.KindPlan, "puppet_plans", "Puppet Plans"),
	}
}

// Registry maps entity kinds to their groups.
type Registry struct {
	groups []*Group
	byKind map[statement.Kind]*Group
}

// New creates a registry with the default groups.
func New() *Registry {
	return NewWithGroups(DefaultGroups()...)
}

// NewWithGroups creates a registry over the given groups. Group order is
// the document order.
func NewWithGroups(groups ...*Group) *Registry {
	r := &Registry{byKind: make(map[statement.Kind]*Group, len(groups))}
	for _, g := range groups {
		r.groups = append(r.groups, g)
		r.byKind[g.kind] = g
	}
	return r
}

// Group returns the group for kind, or nil.
func (r *Registry) Group(kind statement.Kind) *Group {
	return r.byKind[kind]
}

// Groups returns all groups in document order.
func (r *Registry) Groups() []*Group {
	out := make([]*Group, len(r.groups))
	copy(out, r.groups)
	return out
}

// Lookup returns the entity of kind with the given name.
func (r *Registry) Lookup(kind statement.Kind, name string) (Entity, bool) {
	g := r.byKind[kind]
	if g == nil {
		return nil, false
	}
	return g.Get(name)
}

// CreateOrGet returns the existing entity of kind and name, or registers
// the one returned by build. created reports whether build was used.
func (r *Registry) CreateOrGet(kind statement.Kind, name string, build func() Entity) (Entity, bool, error) {
	g := r.byKind[kind]
	if g == nil {
		return nil, false, errors.Errorf(errors.KindInternal, "no group for %s", kind)
	}
	if e, ok := g.Get(name); ok {
		return e, false, nil
	}

	e := build()
	if e == nil || e.Kind() != kind || e.Name() != name {
		return nil, false, errors.Errorf(errors.KindInternal, "builder for %s %q returned a mismatched entity", kind, name)
	}
	g.add(e)
	return e, true, nil
}

// Decorate applies m to e. The mutation is applied even when it returns a
// KindConflict error; that error reports a displaced member. Any other
// error means e was left unchanged.
func (r *Registry) Decorate(e Entity, m Mutation) error {
	if err := m(e); err != nil {
		return errors.Attr(err, "entity", e.Name())
	}
	return nil
}

// All returns every entity in document order.
func (r *Registry) All() []Entity {
	var out []Entity
	for _, g := range r.groups {
		out = append(out, g.Entities()...)
	}
	return out
}

// Len returns the total number of entities.
func (r *Registry) Len() int {
	n := 0
	for _, g := range r.groups {
		n += g.Len()
	}
	return n
}

// Reset empties every group.
func (r *Registry) Reset() {
	for _, g := range r.groups {
		g.reset()
	}
}
