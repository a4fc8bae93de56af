package config

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Parameters holds template parameter values keyed by name. Iteration
// follows insertion order, which is the order the template's
// cookiecutter.json declares them, so prompts and the serialized
// graft.yaml always list parameters the way the template author
// arranged them.
type Parameters struct {
	values *orderedmap.OrderedMap[string, interface{}]
}

// NewParameters creates an empty parameter set.
func NewParameters() *Parameters {
	return &Parameters{values: orderedmap.New[string, interface{}]()}
}

// Set stores a value under key. A key that is already present keeps
// its original position.
func (p *Parameters) Set(key string, value interface{}) {
	if p.values == nil {
		p.values = orderedmap.New[string, interface{}]()
	}
	p.values.Set(key, value)
}

// Get returns the value stored under key.
func (p *Parameters) Get(key string) (interface{}, bool) {
	if p == nil || p.values == nil {
		return nil, false
	}
	return p.values.Get(key)
}

// Has reports whether key is present.
func (p *Parameters) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Len returns the number of parameters.
func (p *Parameters) Len() int {
	if p == nil || p.values == nil {
		return 0
	}
	return p.values.Len()
}

// Keys returns the parameter names in declaration order.
func (p *Parameters) Keys() []string {
	if p == nil || p.values == nil {
		return nil
	}
	keys := make([]string, 0, p.values.Len())
	for pair := p.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Clone returns an independent copy. Values are copied by reference.
func (p *Parameters) Clone() *Parameters {
	clone := NewParameters()
	if p == nil || p.values == nil {
		return clone
	}
	for pair := p.values.Oldest(); pair != nil; pair = pair.Next() {
		clone.values.Set(pair.Key, pair.Value)
	}
	return clone
}

// AsMap flattens the parameters into a plain map for use as a template
// rendering context. Declaration order is lost.
func (p *Parameters) AsMap() map[string]interface{} {
	m := make(map[string]interface{})
	if p == nil || p.values == nil {
		return m
	}
	for pair := p.values.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

// MarshalYAML implements yaml.Marshaler, emitting a mapping node whose
// keys appear in declaration order.
func (p *Parameters) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	if p == nil || p.values == nil {
		return node, nil
	}
	for pair := p.values.Oldest(); pair != nil; pair = pair.Next() {
		keyNode := &yaml.Node{}
		keyNode.SetString(pair.Key)

		valueNode := &yaml.Node{}
		if err := valueNode.Encode(pair.Value); err != nil {
			return nil, fmt.Errorf("failed to encode parameter %q: %w", pair.Key, err)
		}
		node.Content = append(node.Content, keyNode, valueNode)
	}
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler, preserving the key order
// of the source document.
func (p *Parameters) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("parameters must be a mapping, got %s", nodeKind(node))
	}
	p.values = orderedmap.New[string, interface{}]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		var value interface{}
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("failed to decode parameter %q: %w", keyNode.Value, err)
		}
		p.values.Set(keyNode.Value, value)
	}
	return nil
}

// MarshalJSON implements json.Marshaler. Key order follows declaration
// order, matching the YAML form.
func (p *Parameters) MarshalJSON() ([]byte, error) {
	if p == nil || p.values == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.values)
}

// UnmarshalJSON implements json.Unmarshaler, preserving the key order
// of the source document.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	p.values = orderedmap.New[string, interface{}]()
	return json.Unmarshal(data, p.values)
}

func nodeKind(node *yaml.Node) string {
	switch node.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
