// Package types provides type definitions for structured data used throughout the hireflow system.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is the opaque value returned by the synthesis transport.
// Exactly one of BinaryPayload, StructuredPayload or TextPayload.
type Envelope interface {
	isEnvelope()
}

// BinaryPayload is an uninterpreted byte blob plus the declared content type.
type BinaryPayload struct {
	Data        []byte
	ContentType string
}

// StructuredPayload is an already-parsed document tree.
type StructuredPayload struct {
	Root Node
}

// TextPayload is a plain string, possibly JSON-encoded.
type TextPayload struct {
	Text string
}

func (BinaryPayload) isEnvelope()     {}
func (StructuredPayload) isEnvelope() {}
func (TextPayload) isEnvelope()       {}

// Node is one element of a parsed JSON document tree.
// Implementations: Mapping, Sequence, String, Scalar.
type Node interface {
	isNode()
}

// Field is a single key/value pair of a Mapping.
type Field struct {
	Key   string
	Value Node
}

// Mapping is a JSON object. Field order follows the source document.
type Mapping []Field

// Sequence is a JSON array.
type Sequence []Node

// String is a JSON string.
type String string

// Scalar is any other JSON literal (number, boolean or null), kept in its raw form.
type Scalar string

func (Mapping) isNode()  {}
func (Sequence) isNode() {}
func (String) isNode()   {}
func (Scalar) isNode()   {}

// Lookup returns the value of the last field named key, so a repeated key
// resolves the way JSON object decoding does.
func (m Mapping) Lookup(key string) (Node, bool) {
	if i := m.index(key); i >= 0 {
		return m[i].Value, true
	}
	return nil, false
}

func (m Mapping) index(key string) int {
	for i := len(m) - 1; i >= 0; i-- {
		if m[i].Key == key {
			return i
		}
	}
	return -1
}

// ParseNode parses a single JSON value into a Node tree, preserving object key order.
// Trailing non-whitespace content is an error.
func ParseNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeNode(dec)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level JSON value")
	}
	return node, nil
}

// ParseLeadingNode parses the first JSON value in data and ignores anything after it.
func ParseLeadingNode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeNode(dec)
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := Mapping{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}
				value, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				// A repeated key keeps its first position and takes the later value.
				if i := m.index(key); i >= 0 {
					m[i].Value = value
					continue
				}
				m = append(m, Field{Key: key, Value: value})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			s := Sequence{}
			for dec.More() {
				item, err := decodeNode(dec)
				if err != nil {
					return nil, err
				}
				s = append(s, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return s, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", v)
		}
	case string:
		return String(v), nil
	case json.Number:
		return Scalar(v.String()), nil
	case bool:
		if v {
			return Scalar("true"), nil
		}
		return Scalar("false"), nil
	case nil:
		return Scalar("null"), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
