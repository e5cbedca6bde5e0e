// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package configdoc generates the voxdoc.hcl reference from the annotated
// struct definitions in internal/config.
//
// Field doc comments become descriptions. Two annotation lines are
// understood:
//
//	// @default: "info"
//	// @enum: debug, info, warn, error
package configdoc

// Schema is the documentation model of one configuration file.
type Schema struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Attributes  []*Field `json:"attributes,omitempty"`
	Blocks      []*Block `json:"blocks,omitempty"`
}

// Block is an HCL block such as source or output.
type Block struct {
	Name        string   `json:"name"`
	HCLName     string   `json:"hcl_name"`
	Description string   `json:"description"`
	Fields      []*Field `json:"fields,omitempty"`
	Blocks      []*Block `json:"blocks,omitempty"`
	Multiple    bool     `json:"multiple,omitempty"`
}

// Field is an HCL attribute.
type Field struct {
	Name        string   `json:"name"`
	HCLName     string   `json:"hcl_name"`
	GoType      string   `json:"go_type"`
	HCLType     string   `json:"hcl_type"`
	Description string   `json:"description"`
	Optional    bool     `json:"optional"`
	Default     string   `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ConfigSchema is a JSON Schema document.
type ConfigSchema struct {
	Schema      string                   `json:"$schema,omitempty" yaml:"$schema,omitempty"`
	Title       string                   `json:"title,omitempty" yaml:"title,omitempty"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string                   `json:"type,omitempty" yaml:"type,omitempty"`
	Properties  map[string]*ConfigSchema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string                 `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *ConfigSchema            `json:"items,omitempty" yaml:"items,omitempty"`
	Enum        []string                 `json:"enum,omitempty" yaml:"enum,omitempty"`
	Default     any                      `json:"default,omitempty" yaml:"default,omitempty"`
}

type parsedStruct struct {
	Name   string
	Doc    string
	Fields []parsedField
}

type parsedField struct {
	Name    string
	GoType  string
	HCLTag  hclTag
	Doc     string
	Default string
	Enum    []string
}

type hclTag struct {
	Name     string
	Optional bool
	Block    bool
}
