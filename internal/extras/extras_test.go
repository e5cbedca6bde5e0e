// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package extras

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/voxdoc/internal/docstring"
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/registry"
	"grimm.is/voxdoc/internal/statement"
)

func extra(receiver, lookup string, lookupArgs []string, method string, args ...string) statement.Statement {
	name := ""
	if len(lookupArgs) > 0 {
		name = lookupArgs[0]
	}
	return statement.Statement{
		Kind: statement.KindTypeExtra,
		Name: name,
		File: "lib/puppet/type/circus_tent/extra.rb",
		Line: 2,
		Extra: &statement.ExtraCall{
			Receiver:     receiver,
			LookupMethod: lookup,
			LookupArgs:   lookupArgs,
			Method:       method,
			Args:         args,
		},
	}
}

func tentType(t *testing.T, reg *registry.Registry) *registry.ResourceType {
	t.Helper()
	e, ok := reg.Lookup(statement.KindResourceType, "circus_tent")
	require.True(t, ok)
	return e.(*registry.ResourceType)
}

func TestResolveNewparam(t *testing.T) {
	reg := registry.New()
	r := New(reg, nil)

	stmt := extra("Puppet::Type", "type", []string{"circus_tent"}, "newparam", "ringmaster")
	stmt.Extra.Body = statement.Member{Description: "Who runs the show.", Namevar: true}

	out, err := r.Resolve(stmt)
	require.NoError(t, err)
	assert.Equal(t, Applied, out)

	rt := tentType(t, reg)
	require.Len(t, rt.Parameters, 1)
	assert.Equal(t, "ringmaster", rt.Parameters[0].Name)
	assert.Equal(t, "Who runs the show.", rt.Parameters[0].Description)
	assert.Equal(t, 2, rt.Parameters[0].Line)
	assert.Equal(t, "ringmaster", rt.Namevar())
}

func TestResolveNewproperty(t *testing.T) {
	reg := registry.New()
	r := New(reg, nil)

	stmt := extra("Type", "type", []string{"circus_tent"}, "newproperty", "color")
	stmt.Docstring = docstring.Parse("The paint color.")
	stmt.Extra.Body = statement.Member{Values: []string{"red", "blue"}}

	out, err := r.Resolve(stmt)
	require.NoError(t, err)
	assert.Equal(t, Applied, out)

	rt := tentType(t, reg)
	require.Len(t, rt.Properties, 1)
	assert.Equal(t, "color", rt.Properties[0].Name)
	assert.Equal(t, "The paint color.", rt.Properties[0].Description)
	assert.Equal(t, []string{"red", "blue"}, rt.Properties[0].Values)
}

func TestResolveEnsurable(t *testing.T) {
	reg := registry.New()
	r := New(reg, nil)

	out, err := r.Resolve(extra("Puppet::Type", "type", []string{"circus_tent"}, "ensurable"))
	require.NoError(t, err)
	assert.Equal(t, Applied, out)

	rt := tentType(t, reg)
	require.Len(t, rt.Properties, 1)
	assert.Equal(t, "ensure", rt.Properties[0].Name)
	assert.Equal(t, statement.EnsurableDescription, rt.Properties[0].Description)
}

func TestResolveEnsurableKeepsOwnDescription(t *testing.T) {
	reg := registry.New()
	r := New(reg, nil)

	stmt := extra("Puppet::Type", "type", []string{"circus_tent"}, "ensurable")
	stmt.Extra.Body = statement.Member{Description: "Whether the tent stands."}
	_, err := r.Resolve(stmt)
	require.NoError(t, err)

	assert.Equal(t, "Whether the tent stands.", tentType(t, reg).Properties[0].Description)
}

func TestResolveIgnoresOtherShapes(t *testing.T) {
	tests := []struct {
		name string
		stmt statement.Statement
	}{
		{"wrong receiver", extra("Puppet::Provider", "type", []string{"circus_tent"}, "newparam", "x")},
		{"plain receiver", extra("foo", "", nil, "newparam", "x")},
		{"wrong lookup", extra("Puppet::Type", "newtype", []string{"circus_tent"}, "newparam", "x")},
		{"no type name", extra("Puppet::Type", "type", nil, "newparam", "x")},
		{"no member name", extra("Puppet::Type", "type", []string{"circus_tent"}, "newparam")},
		{"unknown method", extra("Puppet::Type", "type", []string{"circus_tent"}, "newcheck", "x")},
		{"not an extra", statement.Statement{Kind: statement.KindClass, Name: "circus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := registry.New()
			out, err := New(reg, nil).Resolve(tt.stmt)
			assert.NoError(t, err)
			assert.Equal(t, Ignored, out)
			assert.Equal(t, 0, reg.Len())
		})
	}
}

func TestResolveConflictLastWins(t *testing.T) {
	reg := registry.New()
	r := New(reg, nil)

	_, err := r.Resolve(extra("Puppet::Type", "type", []string{"circus_tent"}, "newproperty", "color"))
	require.NoError(t, err)

	out, err := r.Resolve(extra("Puppet::Type", "type", []string{"circus_tent"}, "newparam", "color"))
	assert.Equal(t, Applied, out)
	require.Error(t, err)
	assert.Equal(t, errors.KindConflict, errors.GetKind(err))
	assert.Equal(t, "lib/puppet/type/circus_tent/extra.rb", errors.GetAttributes(err)["file"])

	rt := tentType(t, reg)
	assert.Empty(t, rt.Properties)
	require.Len(t, rt.Parameters, 1)
}

func TestResolveDecoratesExistingType(t *testing.T) {
	reg := registry.New()
	e, _, err := reg.CreateOrGet(statement.KindResourceType, "circus_tent", func() registry.Entity {
		return registry.NewResourceType("circus_tent")
	})
	require.NoError(t, err)
	require.NoError(t, reg.Decorate(e, registry.AddParameter(statement.Member{Name: "path"})))

	_, err = New(reg, nil).Resolve(extra("Puppet::Type", "type", []string{"circus_tent"}, "newparam", "name"))
	require.NoError(t, err)

	rt := tentType(t, reg)
	assert.Len(t, rt.Parameters, 2)
	assert.Equal(t, "name", rt.Namevar())
	assert.Equal(t, 1, reg.Len())
}
