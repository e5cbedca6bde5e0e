// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package ordered provides a string-keyed map that remembers insertion order.
//
// It backs every hash voxdoc emits, so serialized documents have a stable
// key order, and it holds decoded Hiera and task data where source order
// matters for canonical rendering.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Map is an insertion-ordered map. The zero value is not usable; call New.
type Map struct {
	keys   []string
	values map[string]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores v under key. Overwriting keeps the key's original position.
func (m *Map) Set(key string, v any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalJSON(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalJSON(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalJSON encodes v without HTML escaping; Puppet source is full of '=>'.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// MarshalYAML builds a mapping node that preserves insertion order.
func (m *Map) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range m.keys {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		valNode := &yaml.Node{}
		if err := valNode.Encode(m.values[k]); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping node, keeping document key order. Nested
// mappings become *Map values and sequences become []any. Merge keys
// (<<: *anchor) contribute the keys the mapping does not set itself; among
// several merged mappings the first one wins.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	if m.values == nil {
		m.values = make(map[string]any)
	}

	explicit := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if k := node.Content[i]; k.ShortTag() != mergeTag {
			explicit[k.Value] = true
		}
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].ShortTag() == mergeTag {
			if err := m.merge(node.Content[i+1], explicit); err != nil {
				return err
			}
			continue
		}
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return err
		}
		v, err := fromNode(node.Content[i+1])
		if err != nil {
			return err
		}
		m.Set(key, v)
	}
	return nil
}

const (
	mergeTag     = "!!merge"
	timestampTag = "!!timestamp"
)

func (m *Map) merge(node *yaml.Node, explicit map[string]bool) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.MappingNode:
		src := New()
		if err := src.UnmarshalYAML(node); err != nil {
			return err
		}
		for _, k := range src.Keys() {
			if explicit[k] || m.Has(k) {
				continue
			}
			v, _ := src.Get(k)
			m.Set(k, v)
		}
		return nil
	case yaml.SequenceNode:
		for _, n := range node.Content {
			if err := m.merge(n, explicit); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: merge value must be a mapping or a list of mappings", node.Line)
	}
}

func fromNode(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.AliasNode:
		return fromNode(node.Alias)
	case yaml.MappingNode:
		child := New()
		if err := child.UnmarshalYAML(node); err != nil {
			return nil, err
		}
		return child, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, n := range node.Content {
			v, err := fromNode(n)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	default:
		if node.ShortTag() == timestampTag {
			return node.Value, nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}
