// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// gen-config-docs generates the voxdoc.hcl reference from the config structs.
//
// Usage:
//
//	go run ./cmd/gen-config-docs -format=markdown -output=docs/config-reference.md
//	go run ./cmd/gen-config-docs -format=jsonschema -output=docs/config-schema.json
package main

import (
	"flag"
	"fmt"
	"os"

	"grimm.is/voxdoc/internal/config"
	"grimm.is/voxdoc/internal/configdoc"
)

func main() {
	format := flag.String("format", "markdown", "Output format: markdown, jsonschema, yaml")
	output := flag.String("output", "", "Output file (default: stdout)")
	configDir := flag.String("config-dir", "internal/config", "Directory containing config Go files")
	flag.Parse()

	parser := configdoc.NewParser()
	if err := parser.ParseDir(*configDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing config directory: %v\n", err)
		os.Exit(1)
	}
	schema := parser.BuildSchema("Config", "voxdoc Configuration ("+config.DefaultFile+")")

	var content string
	var err error
	switch *format {
	case "markdown":
		content = configdoc.GenerateMarkdown(schema)
	case "jsonschema":
		content, err = configdoc.ConfigSchemaToJSON(configdoc.GenerateSchema(schema))
	case "yaml":
		content, err = configdoc.ConfigSchemaToYAML(configdoc.GenerateSchema(schema))
	default:
		fmt.Fprintf(os.Stderr, "Unknown format: %s\n", *format)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating %s: %v\n", *format, err)
		os.Exit(1)
	}

	if *output == "" {
		fmt.Print(content)
		return
	}
	if err := config.WriteFileAtomic(*output, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Generated %s\n", *output)
}
