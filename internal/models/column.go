package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// ColumnType is the coarse inferred type of a CSV column.
type ColumnType string

const (
	ColumnTypeBool   ColumnType = "bool"
	ColumnTypeInt    ColumnType = "int"
	ColumnTypeString ColumnType = "str"
)

// ParseColumnType validates a type tag.
func ParseColumnType(s string) (ColumnType, error) {
	switch ColumnType(s) {
	case ColumnTypeBool, ColumnTypeInt, ColumnTypeString:
		return ColumnType(s), nil
	}
	return "", fmt.Errorf("unknown column type: %q", s)
}

// ColumnTypeMap maps column names to their inferred type and remembers the
// order columns were added in. All encodings emit columns in that order.
//
// A map attached to a Configuration is never modified again; build a new one
// instead.
type ColumnTypeMap struct {
	keys  []string
	types map[string]ColumnType
}

// NewColumnTypeMap creates an empty map with room for n columns.
func NewColumnTypeMap(n int) *ColumnTypeMap {
	return &ColumnTypeMap{
		keys:  make([]string, 0, n),
		types: make(map[string]ColumnType, n),
	}
}

// Set adds or updates a column. Updating keeps the original position.
func (m *ColumnTypeMap) Set(name string, t ColumnType) {
	if m.types == nil {
		m.types = make(map[string]ColumnType)
	}
	if _, ok := m.types[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.types[name] = t
}

// Get returns the type recorded for a column.
func (m ColumnTypeMap) Get(name string) (ColumnType, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Len returns the number of columns.
func (m ColumnTypeMap) Len() int {
	return len(m.keys)
}

// Columns returns the column names in insertion order.
func (m ColumnTypeMap) Columns() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// MarshalJSON writes the columns as a JSON object in insertion order.
func (m ColumnTypeMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(k)
		if err != nil {
			return nil, err
		}
		val, err := marshalString(string(m.types[k]))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping the key order of the document.
func (m *ColumnTypeMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("column type map: expected object, got %v", tok)
	}

	out := NewColumnTypeMap(0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("column type map: unexpected key %v", keyTok)
		}
		var raw string
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("column type map: value for %q: %w", key, err)
		}
		t, err := ParseColumnType(raw)
		if err != nil {
			return err
		}
		out.Set(key, t)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = *out
	return nil
}

// MarshalYAML emits a mapping node so the column order survives.
func (m ColumnTypeMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if len(m.keys) == 0 {
		node.Style = yaml.FlowStyle
	}
	for _, k := range m.keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(m.types[k])},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node in document order.
func (m *ColumnTypeMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("column type map: expected mapping at line %d", node.Line)
	}
	out := NewColumnTypeMap(len(node.Content) / 2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		t, err := ParseColumnType(node.Content[i+1].Value)
		if err != nil {
			return err
		}
		out.Set(node.Content[i].Value, t)
	}
	*m = *out
	return nil
}

var (
	_ msgpack.CustomEncoder = ColumnTypeMap{}
	_ msgpack.CustomDecoder = (*ColumnTypeMap)(nil)
)

// EncodeMsgpack writes a msgpack map in insertion order.
func (m ColumnTypeMap) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(m.keys)); err != nil {
		return err
	}
	for _, k := range m.keys {
		if err := enc.EncodeString(k); err != nil {
			return err
		}
		if err := enc.EncodeString(string(m.types[k])); err != nil {
			return err
		}
	}
	return nil
}

// DecodeMsgpack reads a msgpack map in stream order.
func (m *ColumnTypeMap) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	out := NewColumnTypeMap(n)
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			return err
		}
		v, err := dec.DecodeString()
		if err != nil {
			return err
		}
		t, err := ParseColumnType(v)
		if err != nil {
			return err
		}
		out.Set(k, t)
	}
	*m = *out
	return nil
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
