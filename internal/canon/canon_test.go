// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"grimm.is/voxdoc/internal/ordered"
)

func TestRenderLiterals(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty string", "", "undef"},
		{"string", "hello", "'hello'"},
		{"path string", "/opt/circus-ground", "'/opt/circus-ground'"},
		{"integer", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float", 3.14, "3.14"},
		{"whole float", 2.0, "2.0"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"nil", nil, "undef"},
		{"empty array", []any{}, "[]"},
		{"array", []any{"a", "b"}, "['a', 'b']"},
		{"integer array", []any{1, 2, 3, 5, 8}, "[1, 2, 3, 5, 8]"},
		{"empty hash", map[string]any{}, "{}"},
		{"hash", map[string]any{"key": "value"}, "{ 'key' => 'value' }"},
		{"nested", map[string]any{"tags": []any{"prod", "eu"}}, "{ 'tags' => ['prod', 'eu'] }"},
		{"typed slice", []string{"alpha", "beta", "gamma"}, "['alpha', 'beta', 'gamma']"},
		{"fallback", struct{ A int }{1}, "'{1}'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.in))
		})
	}
}

func TestRenderArraysHaveNoInnerPadding(t *testing.T) {
	out := Render([]any{"alpha", "beta"})
	assert.NotContains(t, out, "[ ")
	assert.NotContains(t, out, " ]")

	nested := Render(map[string]any{"list": []any{1}})
	assert.Equal(t, "{ 'list' => [1] }", nested)
}

func TestRenderOrderedMapKeepsInsertionOrder(t *testing.T) {
	m := ordered.New()
	m.Set("zeta", 1)
	m.Set("alpha", []any{true})
	inner := ordered.New()
	inner.Set("key", "value")
	m.Set("nested_hash", inner)

	assert.Equal(t, "{ 'zeta' => 1, 'alpha' => [true], 'nested_hash' => { 'key' => 'value' } }", Render(m))
	assert.Equal(t, "{}", Render(ordered.New()))
}

func TestRenderGoMapIsDeterministic(t *testing.T) {
	in := map[string]any{"b": 2, "a": 1, "c": map[string]any{"y": nil, "x": ""}}
	first := Render(in)
	for i := 0; i < 20; i++ {
		require.Equal(t, first, Render(in))
	}
	assert.Equal(t, "{ 'a' => 1, 'b' => 2, 'c' => { 'x' => undef, 'y' => undef } }", first)
}

func TestRenderFloatForms(t *testing.T) {
	assert.Equal(t, "0.0001", Render(0.0001))
	assert.Equal(t, "1.0e-05", Render(0.00001))
	assert.Equal(t, "1.0e+20", Render(1e20))
	assert.Equal(t, "1000000.0", Render(1e6))
}

func TestRenderCty(t *testing.T) {
	val := cty.ObjectVal(map[string]cty.Value{
		"size":  cty.NumberIntVal(3),
		"ratio": cty.NumberFloatVal(0.5),
		"tags":  cty.TupleVal([]cty.Value{cty.StringVal("prod"), cty.StringVal("eu")}),
		"owner": cty.NullVal(cty.String),
	})

	assert.Equal(t, "{ 'owner' => undef, 'ratio' => 0.5, 'size' => 3, 'tags' => ['prod', 'eu'] }", Render(val))
	assert.Equal(t, "undef", Render(cty.NullVal(cty.DynamicPseudoType)))
	assert.Equal(t, "'large'", Render(cty.StringVal("large")))
}

func TestFromCtyList(t *testing.T) {
	native, err := FromCty(cty.ListVal([]cty.Value{cty.True, cty.False}))
	require.NoError(t, err)
	assert.Equal(t, []any{true, false}, native)
}
