// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package output serializes a registry as the hash document consumed by
// documentation renderers.
package output

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"grimm.is/voxdoc/internal/errors"
	"grimm.is/voxdoc/internal/ordered"
	"grimm.is/voxdoc/internal/registry"
	"grimm.is/voxdoc/internal/validation"
)

// Formats lists the supported document formats.
var Formats = []string{"json", "yaml"}

// Document builds the top-level mapping of group key to entity hashes.
// Every group is present, in document order, even when empty.
func Document(reg *registry.Registry) *ordered.Map {
	doc := ordered.New()
	for _, g := range reg.Groups() {
		hashes := make([]*ordered.Map, 0, g.Len())
		for _, e := range g.Entities() {
			hashes = append(hashes, e.ToHash())
		}
		doc.Set(g.Key(), hashes)
	}
	return doc
}

// Encode writes doc in the given format.
func Encode(w io.Writer, doc *ordered.Map, format string) error {
	if err := validation.ValidateAllowlist("format", format, Formats); err != nil {
		return err
	}
	switch format {
	case "yaml":
		return EncodeYAML(w, doc)
	default:
		return EncodeJSON(w, doc)
	}
}

// EncodeJSON writes doc as indented JSON. Puppet source is full of '=>'
// and '<', so HTML escaping is disabled.
func EncodeJSON(w io.Writer, doc *ordered.Map) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, errors.KindInternal, "failed to encode JSON document")
	}
	return nil
}

// EncodeYAML writes doc as YAML.
func EncodeYAML(w io.Writer, doc *ordered.Map) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, errors.KindInternal, "failed to encode YAML document")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.KindInternal, "failed to encode YAML document")
	}
	return nil
}

// Render returns doc encoded in format.
func Render(doc *ordered.Map, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Diff returns a unified diff from current to generated, or an empty
// string when they are identical.
func Diff(name string, current, generated []byte) (string, error) {
	if bytes.Equal(current, generated) {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(generated)),
		FromFile: name,
		ToFile:   name + " (generated)",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", errors.Wrap(err, errors.KindInternal, "failed to diff document")
	}
	return text, nil
}
