package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dict is a string-keyed mapping that remembers insertion order. Values are
// string, int64, bool, nil or *Dict.
type Dict struct {
	keys   []string
	values map[string]any
}

func NewDict() *Dict {
	return &Dict{values: make(map[string]any)}
}

// Set stores v under key. A new key goes to the end; an existing key keeps
// its position.
func (d *Dict) Set(key string, v any) *Dict {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
	return d
}

func (d *Dict) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dict) Len() int { return len(d.keys) }

func (d *Dict) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(d.values[key])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Dict) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != json.Delim('{') {
		return fmt.Errorf("expected object, got %v", tok)
	}
	if d.values == nil {
		d.values = make(map[string]any)
	}
	return d.decodeJSON(dec)
}

func (d *Dict) decodeJSON(dec *json.Decoder) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected key, got %v", tok)
		}
		v, err := decodeJSONValue(dec)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		d.Set(key, v)
	}
	_, err := dec.Token()
	return err
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch v := tok.(type) {
	case json.Delim:
		if v != '{' {
			return nil, fmt.Errorf("unexpected %v", v)
		}
		sub := NewDict()
		if err := sub.decodeJSON(dec); err != nil {
			return nil, err
		}
		return sub, nil
	case json.Number:
		return v.Int64()
	case string, bool, nil:
		return v, nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func (d *Dict) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, key := range d.keys {
		k := &yaml.Node{}
		k.SetString(key)
		v := &yaml.Node{}
		if err := v.Encode(d.values[key]); err != nil {
			return nil, fmt.Errorf("marshal %s: %w", key, err)
		}
		node.Content = append(node.Content, k, v)
	}
	return node, nil
}

func (d *Dict) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	if d.values == nil {
		d.values = make(map[string]any)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := decodeYAMLValue(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		d.Set(key, v)
	}
	return nil
}

func decodeYAMLValue(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.MappingNode:
		sub := NewDict()
		if err := sub.UnmarshalYAML(node); err != nil {
			return nil, err
		}
		return sub, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return nil, nil
		case "!!bool":
			var b bool
			err := node.Decode(&b)
			return b, err
		case "!!int":
			var n int64
			err := node.Decode(&n)
			return n, err
		default:
			return node.Value, nil
		}
	}
	return nil, fmt.Errorf("line %d: unexpected yaml node", node.Line)
}
