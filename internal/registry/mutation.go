// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package registry

import (
	"slices"

	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

// Mutation is an additive change applied through Registry.Decorate.
// Applying the same mutation twice leaves the entity as it was after the
// first application.
type Mutation func(Entity) error

func inapplicable(what string, e Entity) error {
	return errors.Errorf(errors.KindInternal, "cannot %s on %s %q", what, e.Kind(), e.Name())
}

// SetLocation sets the declaring file and line.
func SetLocation(file string, line int) Mutation {
	return func(e Entity) error {
		b := e.Common()
		b.File, b.Line = file, line
		return nil
	}
}

// SetDocstring replaces the entity's documentation.
func SetDocstring(doc docstring.Docstring) Mutation {
	return func(e Entity) error {
		e.Common().Docstring = doc
		return nil
	}
}

// SetSource sets the declaration source text.
func SetSource(source string) Mutation {
	return func(e Entity) error {
		e.Common().Source = source
		return nil
	}
}

// SetAliasOf sets the aliased type expression of a data type alias.
func SetAliasOf(aliasOf string) Mutation {
	return func(e Entity) error {
		a, ok := e.(*DataTypeAlias)
		if !ok {
			return inapplicable("set alias_of", e)
		}
		a.AliasOf = aliasOf
		return nil
	}
}

// SetInherits sets the parent class of a class.
func SetInherits(parent string) Mutation {
	return func(e Entity) error {
		c, ok := e.(*Class)
		if !ok {
			return inapplicable("set inherits", e)
		}
		c.Inherits = parent
		return nil
	}
}

// SetTaskMetadata sets the decoded metadata of a task.
func SetTaskMetadata(meta statement.TaskMetadata) Mutation {
	return func(e Entity) error {
		t, ok := e.(*Task)
		if !ok {
			return inapplicable("set task metadata", e)
		}
		t.Metadata = meta
		return nil
	}
}

func codeOf(e Entity) (*puppetCode, bool) {
	switch v := e.(type) {
	case *Class:
		return &v.puppetCode, true
	case *DefinedType:
		return &v.puppetCode, true
	case *Plan:
		return &v.puppetCode, true
	}
	return nil, false
}

// AddCodeParameter adds a parameter to a class, defined type or plan. A
// parameter with the same name is replaced in place.
func AddCodeParameter(p statement.Parameter) Mutation {
	return func(e Entity) error {
		code, ok := codeOf(e)
		if !ok {
			return inapplicable("add parameter", e)
		}
		if existing := code.parameter(p.Name); existing != nil {
			*existing = p
			return nil
		}
		code.Parameters = append(code.Parameters, p)
		return nil
	}
}

// AddParameter adds a parameter to a resource type. A property of the same
// name is removed and reported as a KindConflict error.
func AddParameter(m statement.Member) Mutation {
	return func(e Entity) error {
		t, ok := e.(*ResourceType)
		if !ok {
			return inapplicable("add parameter", e)
		}
		conflict := removeMember(&t.Properties, m.Name)
		t.Parameters = upsertMember(t.Parameters, m)
		if conflict {
			return conflictError(t, m.Name, "property", "parameter")
		}
		return nil
	}
}

// AddProperty adds a property to a resource type.
func AddProperty(m statement.Member) Mutation {
	return func(e Entity) error {
		t, ok := e.(*ResourceType)
		if !ok {
			return inapplicable("add property", e)
		}
		conflict := removeMember(&t.Parameters, m.Name)
		t.Properties = upsertMember(t.Properties, m)
		if conflict {
			return conflictError(t, m.Name, "parameter", "property")
		}
		return nil
	}
}

// AddCheck adds a check to a resource type.
func AddCheck(m statement.Member) Mutation {
	return func(e Entity) error {
		t, ok := e.(*ResourceType)
		if !ok {
			return inapplicable("add check", e)
		}
		t.Checks = upsertMember(t.Checks, m)
		return nil
	}
}

// AddFeature adds a provider feature to a resource type.
func AddFeature(f statement.Feature) Mutation {
	return func(e Entity) error {
		t, ok := e.(*ResourceType)
		if !ok {
			return inapplicable("add feature", e)
		}
		for i := range t.Features {
			if t.Features[i].Name == f.Name {
				t.Features[i] = f
				return nil
			}
		}
		t.Features = append(t.Features, f)
		return nil
	}
}

// SetDefault sets the default literal of an existing parameter.
func SetDefault(param, literal string) Mutation {
	return func(e Entity) error {
		code, ok := codeOf(e)
		if !ok {
			return inapplicable("set default", e)
		}
		p := code.parameter(param)
		if p == nil {
			return errors.Attr(errors.Errorf(errors.KindNotFound, "%s %q has no parameter %q", e.Kind(), e.Name(), param), "parameter", param)
		}
		p.Default = &literal
		return nil
	}
}

// upsertMember replaces a member of the same name in place. Members the
// type declares itself stay ahead of extension-added members, so the
// collection order does not depend on which arrived first.
func upsertMember(members []statement.Member, m statement.Member) []statement.Member {
	for i := range members {
		if members[i].Name != m.Name {
			continue
		}
		if !members[i].Extra || m.Extra {
			m.Extra = members[i].Extra && m.Extra
			members[i] = m
			return members
		}
		members = slices.Delete(members, i, i+1)
		break
	}
	if !m.Extra {
		for i := range members {
			if members[i].Extra {
				return slices.Insert(members, i, m)
			}
		}
	}
	return append(members, m)
}

func removeMember(members *[]statement.Member, name string) bool {
	for i, m := range *members {
		if m.Name == name {
			*members = append((*members)[:i], (*members)[i+1:]...)
			return true
		}
	}
	return false
}

func conflictError(t *ResourceType, name, was, now string) error {
	err := errors.Errorf(errors.KindConflict, "%s %q of resource type %q redeclared as a %s", was, name, t.Name(), now)
	return errors.Attr(err, "parameter", name)
}
