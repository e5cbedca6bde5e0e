// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package extras applies resource type extension calls such as
//
//	Puppet::Type.type(:tent).newproperty(:color) do ... end
//
// to the registry. Calls that do not have this exact shape are assumed to
// be unrelated Ruby and are ignored without a diagnostic.
package extras

import (
	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/logging"
	"grimm.is/voxdoc/internal/registry"
	"grimm.is/voxdoc/internal/statement"
)

// Outcome is the terminal state of resolving one extension call.
type Outcome int

const (
	// Ignored means the call did not have a documentable shape.
	Ignored Outcome = iota
	// Applied means a member was added to a resource type.
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "ignored"
}

// state is a step of the resolver. Each step either advances or stops.
type state int

const (
	checkReceiver state = iota
	checkLookup
	checkMember
	apply
	ignore
)

// Resolver applies extension calls to a registry.
type Resolver struct {
	reg    *registry.Registry
	logger *logging.Logger
}

// New creates a resolver writing into reg.
func New(reg *registry.Registry, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.WithComponent("extras")
	}
	return &Resolver{reg: reg, logger: logger}
}

// match is what the checks learn about a call.
type match struct {
	typeName string
	member   statement.Member
	property bool
}

// Resolve applies stmt when it is a type extension. A non-nil error is
// either an internal failure or a KindConflict from a member redeclared
// under the other member kind; in the latter case the member was applied.
func (r *Resolver) Resolve(stmt statement.Statement) (Outcome, error) {
	call := stmt.Extra
	if stmt.Kind != statement.KindTypeExtra || call == nil {
		return Ignored, nil
	}

	var m match
	st := checkReceiver
	for {
		switch st {
		case checkReceiver:
			st = ignore
			if call.Receiver == "Type" || call.Receiver == "Puppet::Type" {
				st = checkLookup
			}

		case checkLookup:
			st = ignore
			if call.LookupMethod == "type" && len(call.LookupArgs) > 0 && call.LookupArgs[0] != "" {
				m.typeName = call.LookupArgs[0]
				st = checkMember
			}

		case checkMember:
			st = ignore
			m.member = call.Body
			m.member.Line = stmt.Line
			m.member.Extra = true
			switch call.Method {
			case "ensurable":
				m.member.Name = "ensure"
				m.property = true
				if m.member.Description == "" {
					m.member.Description = stmt.Docstring.Text
				}
				if m.member.Description == "" {
					m.member.Description = statement.EnsurableDescription
				}
				st = apply
			case "newproperty", "newparam":
				if len(call.Args) > 0 && call.Args[0] != "" {
					m.member.Name = call.Args[0]
					m.property = call.Method == "newproperty"
					if m.member.Description == "" {
						m.member.Description = stmt.Docstring.Text
					}
					st = apply
				}
			}

		case apply:
			return Applied, r.apply(stmt, m)

		case ignore:
			r.logger.Debug("ignoring call", "file", stmt.File, "line", stmt.Line, "method", call.Method)
			return Ignored, nil
		}
	}
}

func (r *Resolver) apply(stmt statement.Statement, m match) error {
	e, created, err := r.reg.CreateOrGet(statement.KindResourceType, m.typeName, func() registry.Entity {
		return registry.NewResourceType(m.typeName)
	})
	if err != nil {
		return err
	}
	if created {
		r.logger.Debug("resource type created by extension", "type", m.typeName, "file", stmt.File)
	}

	mutation := registry.AddParameter(m.member)
	if m.property {
		mutation = registry.AddProperty(m.member)
	}
	if err := r.reg.Decorate(e, mutation); err != nil {
		return errors.At(err, stmt.File, stmt.Line)
	}

	rt := e.(*registry.ResourceType)
	r.logger.Debug("applied extension", "type", m.typeName, "member", m.member.Name, "namevar", rt.Namevar())
	return nil
}
