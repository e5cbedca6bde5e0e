// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/statement"
)

func strPtr(s string) *string { return &s }

func TestGroupsInDocumentOrder(t *testing.T) {
	r := New()
	var keys, names []string
	for _, g := range r.Groups() {
		keys = append(keys, g.Key())
		names = append(names, g.DisplayName())
	}
	assert.Equal(t, []string{
		"puppet_classes", "defined_types", "resource_types",
		"data_type_aliases", "puppet_tasks", "puppet_plans",
	}, keys)
	assert.Equal(t, []string{
		"Puppet Classes", "Defined Types", "Resource Types",
		"Puppet Data Type Aliases", "Puppet Tasks", "Puppet Plans",
	}, names)
}

func TestCreateOrGet(t *testing.T) {
	r := New()
	builds := 0
	build := func() Entity {
		builds++
		return NewClass("circus")
	}

	first, created, err := r.CreateOrGet(statement.KindClass, "circus", build)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := r.CreateOrGet(statement.KindClass, "circus", build)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, r.Len())
}

func TestCreateOrGetRejectsMismatchedBuild(t *testing.T) {
	r := New()
	_, _, err := r.CreateOrGet(statement.KindClass, "circus", func() Entity { return NewPlan("circus") })
	require.Error(t, err)
	assert.Equal(t, errors.KindInternal, errors.GetKind(err))

	_, _, err = r.CreateOrGet(statement.KindTypeExtra, "circus", func() Entity { return nil })
	assert.Error(t, err)
	assert.Equal(t, 0, r.Len())
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := New(), New()
	_, _, err := a.CreateOrGet(statement.KindPlan, "circus::deploy", func() Entity { return NewPlan("circus::deploy") })
	require.NoError(t, err)

	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())

	a.Reset()
	assert.Equal(t, 0, a.Len())
	_, ok := a.Lookup(statement.KindPlan, "circus::deploy")
	assert.False(t, ok)
}

func TestEntitiesSortedByName(t *testing.T) {
	r := New()
	for _, n := range []string{"zoo", "circus", "menagerie"} {
		name := n
		_, _, err := r.CreateOrGet(statement.KindDefinedType, name, func() Entity { return NewDefinedType(name) })
		require.NoError(t, err)
	}
	var names []string
	for _, e := range r.Group(statement.KindDefinedType).Entities() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"circus", "menagerie", "zoo"}, names)
}

func TestDefaultNamevar(t *testing.T) {
	tests := []struct {
		name   string
		params []statement.Member
		want   string
	}{
		{"empty", nil, ""},
		{"first parameter", []statement.Member{{Name: "path"}, {Name: "mode"}}, "path"},
		{"named name", []statement.Member{{Name: "path"}, {Name: "name"}}, "name"},
		{"explicit", []statement.Member{{Name: "name"}, {Name: "ringmaster", Namevar: true}}, "ringmaster"},
		{"declared before extra", []statement.Member{{Name: "source", Extra: true}, {Name: "path"}}, "path"},
		{"only extras", []statement.Member{{Name: "source", Extra: true}, {Name: "mode", Extra: true}}, "source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultNamevar(tt.params))
		})
	}
}

func TestDecorateIsIdempotent(t *testing.T) {
	r := New()
	e, _, err := r.CreateOrGet(statement.KindResourceType, "circus_tent", func() Entity { return NewResourceType("circus_tent") })
	require.NoError(t, err)

	size := statement.Member{Name: "size", Description: "How large.", Values: []string{"small", "large"}}
	require.NoError(t, r.Decorate(e, AddProperty(size)))
	before := e.ToHash()
	require.NoError(t, r.Decorate(e, AddProperty(size)))

	rt := e.(*ResourceType)
	assert.Len(t, rt.Properties, 1)
	assert.Equal(t, before, e.ToHash())
}

func TestDecorateReplacesMemberInPlace(t *testing.T) {
	rt := NewResourceType("circus_tent")
	r := New()
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "name"})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "poles"})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "name", Description: "Tent name."})))

	require.Len(t, rt.Parameters, 2)
	assert.Equal(t, "name", rt.Parameters[0].Name)
	assert.Equal(t, "Tent name.", rt.Parameters[0].Description)
}

func TestDecorateMemberKindConflict(t *testing.T) {
	r := New()
	rt := NewResourceType("circus_tent")
	require.NoError(t, r.Decorate(rt, AddProperty(statement.Member{Name: "color"})))

	err := r.Decorate(rt, AddParameter(statement.Member{Name: "color"}))
	require.Error(t, err)
	assert.Equal(t, errors.KindConflict, errors.GetKind(err))
	attrs := errors.GetAttributes(err)
	assert.Equal(t, "circus_tent", attrs["entity"])
	assert.Equal(t, "color", attrs["parameter"])

	assert.Empty(t, rt.Properties)
	require.Len(t, rt.Parameters, 1)
	assert.Equal(t, "color", rt.Parameters[0].Name)
}

func TestDecorateInapplicable(t *testing.T) {
	r := New()
	c := NewClass("circus")
	err := r.Decorate(c, AddProperty(statement.Member{Name: "size"}))
	require.Error(t, err)
	assert.Equal(t, errors.KindInternal, errors.GetKind(err))

	err = r.Decorate(c, SetDefault("missing", "'x'"))
	require.Error(t, err)
	assert.Equal(t, errors.KindNotFound, errors.GetKind(err))
}

// A type's own declaration and an extension adding a parameter must give
// the same entity whichever is processed first.
func TestDecorationOrderIndependent(t *testing.T) {
	declare := func(r *Registry) {
		e, _, err := r.CreateOrGet(statement.KindResourceType, "circus_tent", func() Entity { return NewResourceType("circus_tent") })
		require.NoError(t, err)
		require.NoError(t, r.Decorate(e, SetLocation("lib/puppet/type/circus_tent.rb", 3)))
		require.NoError(t, r.Decorate(e, SetDocstring(docstring.Parse("Manages a circus tent."))))
		require.NoError(t, r.Decorate(e, AddParameter(statement.Member{Name: "path"})))
	}
	extend := func(r *Registry) {
		e, _, err := r.CreateOrGet(statement.KindResourceType, "circus_tent", func() Entity { return NewResourceType("circus_tent") })
		require.NoError(t, err)
		require.NoError(t, r.Decorate(e, AddParameter(statement.Member{Name: "name", Description: "Tent name."})))
	}

	a := New()
	declare(a)
	extend(a)

	b := New()
	extend(b)
	declare(b)

	ta, _ := a.Lookup(statement.KindResourceType, "circus_tent")
	tb, _ := b.Lookup(statement.KindResourceType, "circus_tent")
	rta, rtb := ta.(*ResourceType), tb.(*ResourceType)

	assert.Equal(t, "name", rta.Namevar())
	assert.Equal(t, rta.Namevar(), rtb.Namevar())
	assert.ElementsMatch(t, rta.Parameters, rtb.Parameters)
	assert.Equal(t, rta.File, rtb.File)
	assert.Equal(t, rta.Line, rtb.Line)
	assert.True(t, rta.Docstring.Equal(rtb.Docstring))
}

func TestDecorationOrderIndependentWithoutName(t *testing.T) {
	declare := func(r *Registry, e Entity) {
		require.NoError(t, r.Decorate(e, AddParameter(statement.Member{Name: "path"})))
		require.NoError(t, r.Decorate(e, AddParameter(statement.Member{Name: "mode"})))
	}
	extend := func(r *Registry, e Entity) {
		require.NoError(t, r.Decorate(e, AddParameter(statement.Member{Name: "source", Extra: true})))
	}

	a, ta := New(), NewResourceType("circus_tent")
	declare(a, ta)
	extend(a, ta)

	b, tb := New(), NewResourceType("circus_tent")
	extend(b, tb)
	declare(b, tb)

	assert.Equal(t, "path", ta.Namevar())
	assert.Equal(t, "path", tb.Namevar())
	assert.Equal(t, ta.Parameters, tb.Parameters)
	assert.Equal(t, ta.ToHash(), tb.ToHash())
}

func TestDecorateExtraKeepsDeclaredPosition(t *testing.T) {
	r := New()
	rt := NewResourceType("circus_tent")
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "source", Extra: true})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "path", Extra: true})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "path", Description: "Where."})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "mode"})))

	var names []string
	for _, p := range rt.Parameters {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"path", "mode", "source"}, names)
	assert.Equal(t, "path", rt.Namevar())
	assert.False(t, rt.Parameters[0].Extra)
}

func TestClassHash(t *testing.T) {
	r := New()
	c := NewClass("circus")
	require.NoError(t, r.Decorate(c, SetLocation("manifests/init.pp", 9)))
	require.NoError(t, r.Decorate(c, SetDocstring(docstring.Parse("Runs a circus."))))
	require.NoError(t, r.Decorate(c, SetInherits("circus::params")))
	require.NoError(t, r.Decorate(c, AddCodeParameter(statement.Parameter{Name: "tent_size", Type: "String", Default: strPtr("'small'")})))
	require.NoError(t, r.Decorate(c, AddCodeParameter(statement.Parameter{Name: "ringmaster", Type: "String"})))
	require.NoError(t, r.Decorate(c, SetDefault("tent_size", "'large'")))
	require.NoError(t, r.Decorate(c, SetSource("class circus {}")))

	h := c.ToHash()
	assert.Equal(t, []string{"name", "file", "line", "docstring", "inherits", "defaults", "source"}, h.Keys())

	defaults, _ := h.Get("defaults")
	assert.JSONEq(t, `{"tent_size":"'large'"}`, mustJSON(t, defaults))
}

func TestClassHashOmitsEmptyOptionals(t *testing.T) {
	h := NewClass("circus").ToHash()
	assert.Equal(t, []string{"name", "file", "line", "docstring"}, h.Keys())
}

func TestDataTypeAliasHashAlwaysHasAliasOf(t *testing.T) {
	h := NewDataTypeAlias("Circus::Size").ToHash()
	assert.Equal(t, []string{"name", "file", "line", "docstring", "alias_of"}, h.Keys())
}

func TestResourceTypeHash(t *testing.T) {
	r := New()
	rt := NewResourceType("circus_tent")
	require.NoError(t, r.Decorate(rt, AddProperty(statement.Member{Name: "ensure", Description: statement.EnsurableDescription, Values: []string{"present", "absent"}})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "poles", Default: strPtr("4")})))
	require.NoError(t, r.Decorate(rt, AddParameter(statement.Member{Name: "name"})))
	require.NoError(t, r.Decorate(rt, AddCheck(statement.Member{Name: "exists"})))
	require.NoError(t, r.Decorate(rt, AddFeature(statement.Feature{Name: "inflatable", Methods: []string{"inflate"}})))

	h := rt.ToHash()
	assert.Equal(t, []string{"name", "file", "line", "docstring", "properties", "parameters", "checks", "features"}, h.Keys())

	assert.JSONEq(t, `[
		{"name":"poles","default":"4"},
		{"name":"name","isnamevar":true}
	]`, mustJSON(t, mustGet(t, h, "parameters")))
	assert.JSONEq(t, `[{"name":"inflatable","methods":["inflate"]}]`, mustJSON(t, mustGet(t, h, "features")))
}

func TestTaskHash(t *testing.T) {
	r := New()
	task := NewTask("circus::juggle")
	require.NoError(t, r.Decorate(task, SetSource("{}")))
	require.NoError(t, r.Decorate(task, SetTaskMetadata(statement.TaskMetadata{SupportsNoop: true, InputMethod: "stdin"})))

	h := task.ToHash()
	assert.Equal(t, []string{"name", "file", "line", "docstring", "source", "supports_noop", "input_method"}, h.Keys())
}
