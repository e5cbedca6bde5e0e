// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package configdoc

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"grimm.is/voxdoc/internal/errors"
)

// GenerateSchema converts the documentation schema into a JSON Schema
// matching the HCL JSON syntax of the configuration file.
func GenerateSchema(schema *Schema) *ConfigSchema {
	js := &ConfigSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		Title:       schema.Title,
		Description: schema.Description,
		Type:        "object",
		Properties:  make(map[string]*ConfigSchema),
	}
	for _, f := range schema.Attributes {
		js.Properties[f.HCLName] = fieldToSchema(f)
		if !f.Optional {
			js.Required = append(js.Required, f.HCLName)
		}
	}
	for _, b := range schema.Blocks {
		js.Properties[b.HCLName] = blockToSchema(b)
	}
	return js
}

func blockToSchema(block *Block) *ConfigSchema {
	js := &ConfigSchema{
		Title:       block.Name,
		Description: block.Description,
		Type:        "object",
		Properties:  make(map[string]*ConfigSchema),
	}
	for _, f := range block.Fields {
		js.Properties[f.HCLName] = fieldToSchema(f)
		if !f.Optional {
			js.Required = append(js.Required, f.HCLName)
		}
	}
	for _, nested := range block.Blocks {
		js.Properties[nested.HCLName] = blockToSchema(nested)
	}
	if block.Multiple {
		return &ConfigSchema{Type: "array", Description: block.Description, Items: js}
	}
	return js
}

func fieldToSchema(f *Field) *ConfigSchema {
	js := &ConfigSchema{Description: f.Description}

	switch {
	case f.HCLType == "string":
		js.Type = "string"
		js.Enum = f.Enum
	case f.HCLType == "bool":
		js.Type = "boolean"
	case f.HCLType == "number":
		js.Type = "number"
	case strings.HasPrefix(f.HCLType, "list("):
		inner := strings.TrimSuffix(strings.TrimPrefix(f.HCLType, "list("), ")")
		js.Type = "array"
		js.Items = &ConfigSchema{Type: jsonType(inner)}
	case f.HCLType == "any":
	default:
		js.Type = "object"
	}

	if f.Default != "" {
		js.Default = defaultValue(f.Default, js.Type)
	}
	return js
}

func jsonType(hclType string) string {
	switch hclType {
	case "bool":
		return "boolean"
	case "number":
		return "number"
	default:
		return "string"
	}
}

func defaultValue(def, jsonType string) any {
	switch jsonType {
	case "boolean":
		return def == "true"
	case "number":
		if n, err := strconv.ParseFloat(def, 64); err == nil {
			return n
		}
	}
	if s, err := strconv.Unquote(def); err == nil {
		return s
	}
	return def
}

// ConfigSchemaToJSON renders js as indented JSON.
func ConfigSchemaToJSON(js *ConfigSchema) (string, error) {
	data, err := json.MarshalIndent(js, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, errors.KindInternal, "failed to encode schema")
	}
	return string(data) + "\n", nil
}

// ConfigSchemaToYAML renders js as YAML.
func ConfigSchemaToYAML(js *ConfigSchema) (string, error) {
	data, err := yaml.Marshal(js)
	if err != nil {
		return "", errors.Wrap(err, errors.KindInternal, "failed to encode schema")
	}
	return string(data), nil
}
