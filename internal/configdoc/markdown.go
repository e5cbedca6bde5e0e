// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package configdoc

import (
	"fmt"
	"strings"
)

// GenerateMarkdown renders the schema as a Markdown reference.
func GenerateMarkdown(schema *Schema) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", schema.Title)
	if schema.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", schema.Description)
	}

	if len(schema.Attributes) > 0 {
		sb.WriteString("## Attributes\n\n")
		writeFieldsTable(&sb, schema.Attributes)
	}
	for _, block := range schema.Blocks {
		writeBlock(&sb, block, 2)
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, block *Block, level int) {
	fmt.Fprintf(sb, "%s %s\n\n", strings.Repeat("#", level), block.HCLName)
	if block.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", block.Description)
	}

	sb.WriteString("```hcl\n")
	fmt.Fprintf(sb, "%s {\n", block.HCLName)
	for _, f := range block.Fields {
		fmt.Fprintf(sb, "  %s = %s\n", f.HCLName, exampleValue(f))
	}
	sb.WriteString("}\n```\n\n")

	if len(block.Fields) > 0 {
		writeFieldsTable(sb, block.Fields)
	}
	for _, nested := range block.Blocks {
		writeBlock(sb, nested, level+1)
	}
}

func writeFieldsTable(sb *strings.Builder, fields []*Field) {
	sb.WriteString("| Attribute | Type | Required | Description |\n")
	sb.WriteString("|-----------|------|----------|-------------|\n")
	for _, f := range fields {
		req := "Yes"
		if f.Optional {
			req = "No"
			if f.Default != "" {
				req = fmt.Sprintf("No (default: `%s`)", f.Default)
			}
		}
		desc := f.Description
		if len(f.Enum) > 0 {
			desc = strings.TrimSpace(desc + fmt.Sprintf(" Values: `%s`", strings.Join(f.Enum, "`, `")))
		}
		fmt.Fprintf(sb, "| `%s` | `%s` | %s | %s |\n", f.HCLName, f.HCLType, req, desc)
	}
	sb.WriteString("\n")
}

func exampleValue(f *Field) string {
	if f.Default != "" {
		return f.Default
	}
	if len(f.Enum) > 0 {
		return fmt.Sprintf("%q", f.Enum[0])
	}
	switch {
	case f.HCLType == "string":
		return `"..."`
	case f.HCLType == "bool":
		return "true"
	case f.HCLType == "number":
		return "0"
	case strings.HasPrefix(f.HCLType, "list("):
		return "[...]"
	default:
		return "{...}"
	}
}
