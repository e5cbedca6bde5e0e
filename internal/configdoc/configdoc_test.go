// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package configdoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configSchema(t *testing.T) *Schema {
	t.Helper()
	p := NewParser()
	require.NoError(t, p.ParseDir("../config"))
	return p.BuildSchema("Config", "voxdoc Configuration")
}

func field(fields []*Field, name string) *Field {
	for _, f := range fields {
		if f.HCLName == name {
			return f
		}
	}
	return nil
}

func TestBuildSchemaFromConfigPackage(t *testing.T) {
	schema := configSchema(t)
	assert.Equal(t, "Config is the top-level structure for a voxdoc run.", schema.Description)

	level := field(schema.Attributes, "log_level")
	require.NotNil(t, level)
	assert.Equal(t, "string", level.HCLType)
	assert.True(t, level.Optional)
	assert.Equal(t, `"info"`, level.Default)
	assert.Equal(t, []string{"debug", "info", "warn", "error"}, level.Enum)

	overrides := field(schema.Attributes, "default_overrides")
	require.NotNil(t, overrides)
	assert.Equal(t, "any", overrides.HCLType)

	var names []string
	for _, b := range schema.Blocks {
		names = append(names, b.HCLName)
	}
	assert.Equal(t, []string{"source", "hiera", "output"}, names)

	hiera := schema.Blocks[1]
	enabled := field(hiera.Fields, "enabled")
	require.NotNil(t, enabled)
	assert.Equal(t, "bool", enabled.HCLType)

	include := field(schema.Blocks[0].Fields, "include")
	require.NotNil(t, include)
	assert.Equal(t, "list(string)", include.HCLType)
}

func TestParseSource(t *testing.T) {
	src := `package demo

// Settings configures the demo.
type Settings struct {
	// How loud to be.
	// @default: 3
	Volume int ` + "`hcl:\"volume,optional\"`" + `
	Name string ` + "`hcl:\"name\"`" + `
	internal string
}
`
	p := NewParser()
	require.NoError(t, p.ParseSource("demo.go", []byte(src)))
	schema := p.BuildSchema("Settings", "Demo")

	require.Len(t, schema.Attributes, 2)
	assert.Equal(t, "How loud to be.", schema.Attributes[0].Description)
	assert.Equal(t, "number", schema.Attributes[0].HCLType)
	assert.False(t, schema.Attributes[1].Optional)

	js := GenerateSchema(schema)
	assert.Equal(t, []string{"name"}, js.Required)
	assert.Equal(t, 3.0, js.Properties["volume"].Default)
}

func TestParseSourceError(t *testing.T) {
	assert.Error(t, NewParser().ParseSource("bad.go", []byte("package x\ntype {")))
}

func TestGenerateMarkdown(t *testing.T) {
	md := GenerateMarkdown(configSchema(t))
	assert.Contains(t, md, "# voxdoc Configuration\n")
	assert.Contains(t, md, "## Attributes\n")
	assert.Contains(t, md, "| `log_level` | `string` | No (default: `\"info\"`) |")
	assert.Contains(t, md, "## output\n")
	assert.Contains(t, md, "Values: `json`, `yaml`")
}

func TestGenerateJSONSchema(t *testing.T) {
	out, err := ConfigSchemaToJSON(GenerateSchema(configSchema(t)))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	props := doc["properties"].(map[string]any)

	level := props["log_level"].(map[string]any)
	assert.Equal(t, "info", level["default"])
	assert.Equal(t, []any{"debug", "info", "warn", "error"}, level["enum"])

	output := props["output"].(map[string]any)
	assert.Equal(t, "object", output["type"])
	assert.Contains(t, output["properties"], "format")
}

func TestGenerateYAMLSchema(t *testing.T) {
	out, err := ConfigSchemaToYAML(GenerateSchema(configSchema(t)))
	require.NoError(t, err)
	assert.Contains(t, out, "log_format:")
}
