// Package json provides JSON decoding for flowlens on top of goccy/go-json.
//
// Flow exports carry meaning in the order of object members: processor
// property order must survive into the tabular output, and the unguided
// document traversal must visit keys in source order. The standard decode
// into map[string]interface{} discards that order, so Decode materializes
// every JSON object as an *Object, an insertion-ordered key/value container.
package json

import (
	"bytes"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
)

// Number re-exports the decoder's number type. Numeric scalars produced by
// Decode are Number values, never float64, so integer IDs round-trip exactly.
type Number = gojson.Number

// Object is a JSON object that preserves the order in which keys first
// appeared in the source document.
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]interface{})}
}

// Set stores value under key. A key keeps the position of its first
// insertion; setting an existing key replaces the value in place, which
// gives duplicate members in malformed documents last-value-wins semantics
// without disturbing ordering.
func (o *Object) Set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the object's keys in source order. The returned slice is
// shared; callers must not modify it.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// MarshalJSON writes the object back out in key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := gojson.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := gojson.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode reads a single JSON document from r. Objects decode to *Object,
// arrays to []interface{}, numbers to Number, and the remaining scalars to
// string, bool, or nil.
func Decode(r io.Reader) (interface{}, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()

	value, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}

	// Anything after the first document means the input is not one JSON
	// document.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected trailing data after JSON document")
	}
	return value, nil
}

// DecodeBytes decodes a single JSON document held in data.
func DecodeBytes(data []byte) (interface{}, error) {
	return Decode(bytes.NewReader(data))
}

func decodeValue(dec *gojson.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(gojson.Delim)
	if !ok {
		// string, Number, bool, or nil
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is not a string: %v", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		if _, err := dec.Token(); err != nil { // consume '}'
			return nil, err
		}
		return obj, nil

	case '[':
		arr := make([]interface{}, 0, 8)
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil

	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// Marshal serializes v using goccy/go-json.
func Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

// MarshalIndent serializes v with indentation for human-facing output.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return gojson.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses data into v using goccy/go-json.
func Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}
