package sqlq

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

/*
Transportable representation of a `SelectQuery`. Produced by
`SelectQuery.ToDescriptor` and turned back into a query by `FromDescriptor`;
the reconstructed query compiles to the same text and arguments.

Supports JSON, YAML and MessagePack (via `MarshalBinary`). In every format,
the key order of each condition is preserved, because it determines the order
of parameters.
*/
type Descriptor struct {
	Table    string      `json:"table"              yaml:"table"              msgpack:"table"`
	Fields   []string    `json:"fields,omitempty"   yaml:"fields,omitempty"   msgpack:"fields,omitempty"`
	Where    []Condition `json:"where,omitempty"    yaml:"where,omitempty"    msgpack:"where,omitempty"`
	Options  Options     `json:"options"            yaml:"options"            msgpack:"options"`
	Unquoted bool        `json:"unquoted,omitempty" yaml:"unquoted,omitempty" msgpack:"unquoted,omitempty"`
}

// Returns a deep copy.
func (self Descriptor) Clone() Descriptor {
	return Descriptor{
		Table:    self.Table,
		Fields:   copyStrings(self.Fields),
		Where:    cloneConditions(self.Where),
		Options:  self.Options.Clone(),
		Unquoted: self.Unquoted,
	}
}

// Same fields without methods. The MessagePack codec would otherwise call
// `MarshalBinary` recursively.
type plainDescriptor Descriptor

// Implement `encoding.BinaryMarshaler` using MessagePack.
func (self Descriptor) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal((*plainDescriptor)(&self))
}

// Implement `encoding.BinaryUnmarshaler` using MessagePack.
func (self *Descriptor) UnmarshalBinary(src []byte) error {
	return msgpack.Unmarshal(src, (*plainDescriptor)(self))
}

/*
Returns a descriptor of the query's current configuration. The descriptor
shares no storage with the query: later changes to either don't affect the
other.
*/
func (self *SelectQuery) ToDescriptor() Descriptor {
	return Descriptor{
		Table:    self.table,
		Fields:   self.fields,
		Where:    self.where,
		Options:  self.opts,
		Unquoted: self.unquoted,
	}.Clone()
}

// Inverse of `SelectQuery.ToDescriptor`.
func FromDescriptor(src Descriptor) *SelectQuery {
	src = src.Clone()
	return &SelectQuery{
		table:    src.Table,
		fields:   src.Fields,
		where:    src.Where,
		opts:     src.Options,
		unquoted: src.Unquoted,
	}
}

// Implement `json.Marshaler`, encoding pairs as an object with ordered keys.
func (self Condition) MarshalJSON() ([]byte, error) {
	if self == nil {
		return []byte(`null`), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	for ind, pair := range self {
		if ind > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(pair.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(pair.Val)
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

/*
Implement `json.Unmarshaler`, preserving the key order of the source object.
Integer numbers are decoded as `int64`, other numbers as `float64`.
*/
func (self *Condition) UnmarshalJSON(src []byte) error {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*self = nil
		return nil
	}
	if tok != json.Delim('{') {
		return ErrInvalidInput.while(`decoding condition`).becausef(`expected JSON object, got %v`, tok)
	}

	out := Condition{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := tok.(string)
		if !ok {
			return ErrInvalidInput.while(`decoding condition`).becausef(`expected string key, got %v`, tok)
		}

		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		out = append(out, Pair{key, jsonNumbers(val)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*self = out
	return nil
}

func jsonNumbers(src any) any {
	switch src := src.(type) {
	case json.Number:
		if val, err := src.Int64(); err == nil {
			return val
		}
		if val, err := src.Float64(); err == nil {
			return val
		}
		return src.String()
	case []any:
		for ind, val := range src {
			src[ind] = jsonNumbers(val)
		}
		return src
	case map[string]any:
		for key, val := range src {
			src[key] = jsonNumbers(val)
		}
		return src
	default:
		return src
	}
}

// Implement `yaml.Marshaler`, encoding pairs as a mapping with ordered keys.
func (self Condition) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, pair := range self {
		var key, val yaml.Node
		if err := key.Encode(pair.Key); err != nil {
			return nil, err
		}
		if err := val.Encode(pair.Val); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &key, &val)
	}
	return node, nil
}

// Implement `yaml.Unmarshaler`, preserving the key order of the source mapping.
func (self *Condition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return ErrInvalidInput.while(`decoding condition`).becausef(
			`expected YAML mapping at line %d`, node.Line,
		)
	}

	out := make(Condition, 0, len(node.Content)/2)
	for ind := 0; ind+1 < len(node.Content); ind += 2 {
		var key string
		if err := node.Content[ind].Decode(&key); err != nil {
			return err
		}

		var val any
		if err := node.Content[ind+1].Decode(&val); err != nil {
			return err
		}
		out = append(out, Pair{key, val})
	}

	*self = out
	return nil
}

var (
	_ msgpack.CustomEncoder = Condition(nil)
	_ msgpack.CustomDecoder = (*Condition)(nil)
)

// Implement `msgpack.CustomEncoder`, encoding pairs as a map with ordered keys.
func (self Condition) EncodeMsgpack(enc *msgpack.Encoder) error {
	if self == nil {
		return enc.EncodeNil()
	}
	if err := enc.EncodeMapLen(len(self)); err != nil {
		return err
	}
	for _, pair := range self {
		if err := enc.EncodeString(pair.Key); err != nil {
			return err
		}
		if err := enc.Encode(pair.Val); err != nil {
			return err
		}
	}
	return nil
}

/*
Implement `msgpack.CustomDecoder`, preserving the key order of the source map.
Integers are decoded as `int64` or `uint64`, floats as `float64`.
*/
func (self *Condition) DecodeMsgpack(dec *msgpack.Decoder) error {
	size, err := dec.DecodeMapLen()
	if err != nil {
		return err
	}
	if size < 0 {
		*self = nil
		return nil
	}

	out := make(Condition, 0, size)
	for range size {
		key, err := dec.DecodeString()
		if err != nil {
			return fmt.Errorf(`decoding condition key: %w`, err)
		}

		val, err := dec.DecodeInterfaceLoose()
		if err != nil {
			return fmt.Errorf(`decoding condition value for %q: %w`, key, err)
		}
		out = append(out, Pair{key, val})
	}

	*self = out
	return nil
}
