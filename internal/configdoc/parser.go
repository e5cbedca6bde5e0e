// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package configdoc

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"reflect"
	"strings"

	"grimm.is/voxdoc/internal/errors"
)

// Parser extracts struct definitions with hcl tags from Go source.
type Parser struct {
	fset    *token.FileSet
	structs map[string]*parsedStruct
}

// NewParser creates a new documentation parser.
func NewParser() *Parser {
	return &Parser{
		fset:    token.NewFileSet(),
		structs: make(map[string]*parsedStruct),
	}
}

// ParseDir parses the non-test Go files of dir.
func (p *Parser) ParseDir(dir string) error {
	pkgs, err := parser.ParseDir(p.fset, dir, func(fi fs.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, parser.ParseComments)
	if err != nil {
		return errors.At(errors.Wrap(err, errors.KindParse, "failed to parse config sources"), dir, 0)
	}
	for _, pkg := range pkgs {
		for _, file := range pkg.Files {
			p.extractStructs(file)
		}
	}
	return nil
}

// ParseSource parses a single Go source file held in memory.
func (p *Parser) ParseSource(filename string, src []byte) error {
	file, err := parser.ParseFile(p.fset, filename, src, parser.ParseComments)
	if err != nil {
		return errors.At(errors.Wrap(err, errors.KindParse, "failed to parse config source"), filename, 0)
	}
	p.extractStructs(file)
	return nil
}

func (p *Parser) extractStructs(file *ast.File) {
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || !hasHCLTags(st) {
				continue
			}
			doc := gen.Doc
			if ts.Doc != nil {
				doc = ts.Doc
			}
			p.structs[ts.Name.Name] = parseStruct(ts.Name.Name, st, doc)
		}
	}
}

func hasHCLTags(s *ast.StructType) bool {
	for _, field := range s.Fields.List {
		if field.Tag != nil && strings.Contains(field.Tag.Value, "hcl:") {
			return true
		}
	}
	return false
}

func parseStruct(name string, s *ast.StructType, doc *ast.CommentGroup) *parsedStruct {
	ps := &parsedStruct{Name: name, Doc: strings.TrimSpace(doc.Text())}
	for _, field := range s.Fields.List {
		if len(field.Names) == 0 || field.Tag == nil {
			continue
		}
		pf := parsedField{
			Name:   field.Names[0].Name,
			GoType: typeToString(field.Type),
			Doc:    strings.TrimSpace(field.Doc.Text()),
		}
		if inline := strings.TrimSpace(field.Comment.Text()); inline != "" {
			pf.Doc = strings.TrimSpace(pf.Doc + "\n" + inline)
		}
		tag := reflect.StructTag(strings.Trim(field.Tag.Value, "`"))
		pf.HCLTag = parseHCLTag(tag.Get("hcl"))
		if pf.HCLTag.Name == "" {
			continue
		}
		pf.Default, pf.Enum = parseAnnotations(pf.Doc)
		ps.Fields = append(ps.Fields, pf)
	}
	return ps
}

func parseHCLTag(tag string) hclTag {
	parts := strings.Split(tag, ",")
	ht := hclTag{Name: parts[0]}
	for _, part := range parts[1:] {
		switch part {
		case "optional":
			ht.Optional = true
		case "block":
			ht.Block = true
		}
	}
	return ht
}

func parseAnnotations(doc string) (def string, enum []string) {
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "@default:"):
			def = strings.TrimSpace(strings.TrimPrefix(line, "@default:"))
		case strings.HasPrefix(line, "@enum:"):
			for _, e := range strings.Split(strings.TrimPrefix(line, "@enum:"), ",") {
				if e = strings.TrimSpace(e); e != "" {
					enum = append(enum, e)
				}
			}
		}
	}
	return def, enum
}

func typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeToString(t.X)
	case *ast.ArrayType:
		return "[]" + typeToString(t.Elt)
	case *ast.MapType:
		return "map[" + typeToString(t.Key) + "]" + typeToString(t.Value)
	case *ast.SelectorExpr:
		return typeToString(t.X) + "." + t.Sel.Name
	default:
		return "unknown"
	}
}

// BuildSchema builds the documentation schema rooted at rootType.
func (p *Parser) BuildSchema(rootType, title string) *Schema {
	schema := &Schema{Title: title}
	root := p.structs[rootType]
	if root == nil {
		return schema
	}
	schema.Description = root.Doc

	for _, f := range root.Fields {
		if f.HCLTag.Block {
			schema.Blocks = append(schema.Blocks, p.buildBlock(f))
		} else {
			schema.Attributes = append(schema.Attributes, buildField(f))
		}
	}
	return schema
}

func (p *Parser) buildBlock(f parsedField) *Block {
	block := &Block{
		Name:        f.Name,
		HCLName:     f.HCLTag.Name,
		Description: cleanDescription(f.Doc),
		Multiple:    strings.HasPrefix(f.GoType, "[]"),
	}
	ref := p.structs[strings.TrimPrefix(strings.TrimPrefix(f.GoType, "*"), "[]")]
	if ref == nil {
		return block
	}
	if block.Description == "" {
		block.Description = ref.Doc
	}
	for _, nested := range ref.Fields {
		if nested.HCLTag.Block {
			block.Blocks = append(block.Blocks, p.buildBlock(nested))
		} else {
			block.Fields = append(block.Fields, buildField(nested))
		}
	}
	return block
}

func buildField(pf parsedField) *Field {
	return &Field{
		Name:        pf.Name,
		HCLName:     pf.HCLTag.Name,
		GoType:      pf.GoType,
		HCLType:     goTypeToHCLType(pf.GoType),
		Description: cleanDescription(pf.Doc),
		Optional:    pf.HCLTag.Optional,
		Default:     pf.Default,
		Enum:        pf.Enum,
	}
}

func goTypeToHCLType(goType string) string {
	goType = strings.TrimPrefix(goType, "*")
	switch {
	case strings.HasPrefix(goType, "[]"):
		return "list(" + goTypeToHCLType(strings.TrimPrefix(goType, "[]")) + ")"
	case strings.HasPrefix(goType, "map["):
		return "map"
	}

	switch goType {
	case "string":
		return "string"
	case "bool":
		return "bool"
	case "int", "int64", "float64":
		return "number"
	case "cty.Value":
		return "any"
	default:
		return "object"
	}
}

// cleanDescription drops annotation lines and joins the rest.
func cleanDescription(doc string) string {
	var clean []string
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			continue
		}
		clean = append(clean, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(clean, " "))
}
