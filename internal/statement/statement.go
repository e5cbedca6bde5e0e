// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package statement defines the dialect-neutral representation of a parsed
// declaration. Parsers produce statements; the handler consumes them and
// never needs to know which dialect a statement came from.
package statement

import (
	"grimm.is/voxdoc/internal/docstring"
)

// Kind identifies the declaration a statement represents.
type Kind int

const (
	KindUnknown Kind = iota
	KindClass
	KindDefinedType
	KindPlan
	KindDataTypeAlias
	KindResourceType
	KindTypeExtra
	KindTask
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindDefinedType:
		return "defined_type"
	case KindPlan:
		return "plan"
	case KindDataTypeAlias:
		return "data_type_alias"
	case KindResourceType:
		return "resource_type"
	case KindTypeExtra:
		return "type_extra"
	case KindTask:
		return "task"
	default:
		return "unknown"
	}
}

// Parameter is a declared parameter of a class, defined type or plan.
type Parameter struct {
	Name string
	// Type is the declared type expression, empty when untyped.
	Type string
	// Default is the default value as trimmed source text; nil means the
	// parameter has no default.
	Default *string
	Line    int
}

// HasDefault reports whether a default value was declared.
func (p Parameter) HasDefault() bool {
	return p.Default != nil
}

// Member is a property, parameter or check of a resource type.
type Member struct {
	Name        string
	Description string
	Namevar     bool
	Values      []string
	Default     *string
	Line        int
	// Extra marks a member added by an extension call chain rather than
	// by the type's own declaration.
	Extra bool
}

// Feature is a named provider feature declared on a resource type.
type Feature struct {
	Name        string
	Description string
	Methods     []string
}

// TypeDecl carries the members declared inside a resource type body.
type TypeDecl struct {
	Properties []Member
	Parameters []Member
	Checks     []Member
	Features   []Feature
}

// ExtraCall is the shape of an extension call chain such as
//
//	Type.type(:tent).newparam(:size) do ... end
//
// The call is recorded as seen; deciding whether it is documentable is left
// to the extras resolver.
type ExtraCall struct {
	Receiver     string
	LookupMethod string
	LookupArgs   []string
	Method       string
	Args         []string
	// Body holds what the do/end block contributed (description,
	// namevar, values, default). Body.Name is always empty.
	Body Member
}

// TaskParameter is a parameter entry of task metadata.
type TaskParameter struct {
	Name string
	Type string
	// Description is nil when the metadata omits it.
	Description *string
	Sensitive   bool
}

// TaskMetadata is the decoded content of a task metadata file.
type TaskMetadata struct {
	Description  *string
	SupportsNoop bool
	InputMethod  string
	Parameters   []TaskParameter
}

// Statement is one parsed declaration. It is a tagged variant: Type is set
// for KindResourceType, Extra for KindTypeExtra and Task for KindTask.
type Statement struct {
	Kind       Kind
	Name       string
	Parameters []Parameter
	// ParentClass is the inherited class of a KindClass statement.
	ParentClass string
	// AliasOf is the aliased type expression of a KindDataTypeAlias.
	AliasOf   string
	Docstring docstring.Docstring
	Source    string
	File      string
	Line      int

	Type  *TypeDecl
	Extra *ExtraCall
	Task  *TaskMetadata
}

// Parameter returns the named parameter.
func (s *Statement) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// EnsurableDescription documents an ensure property declared with
// ensurable and no description of its own.
const EnsurableDescription = "The basic property that the resource should be in."
