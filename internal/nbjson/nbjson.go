// Package nbjson reads and writes notebook JSON while preserving the
// document's key order and numeric literals, so that rewriting a file
// touches only the fields the sanitizer actually changed.
package nbjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Map is the ordered object node of a decoded document tree.
// Arrays decode to []any, numbers to json.Number; strings, bools and
// nulls to their Go equivalents.
type Map = orderedmap.OrderedMap[string, any]

// ErrNotObject reports valid JSON whose top-level value is not an object.
var ErrNotObject = errors.New("top-level JSON value is not an object")

// IsNotObject reports whether err came from a non-object top-level value.
func IsNotObject(err error) bool {
	return errors.Is(err, ErrNotObject)
}

// NewMap returns an empty ordered object node.
func NewMap() *Map {
	return orderedmap.New[string, any]()
}

// Decode parses a complete JSON document into an ordered tree.
// The top-level value must be an object.
func Decode(data []byte) (*Map, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, ErrNotObject
	}

	doc, err := decodeObject(dec)
	if err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}

	// Anything after the document besides whitespace is malformed.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse JSON: trailing data after document")
	}
	return doc, nil
}

// decodeObject consumes tokens up to and including the closing brace.
func decodeObject(dec *json.Decoder) (*Map, error) {
	obj := NewMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is not a string: %v", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) ([]any, error) {
	arr := make([]any, 0)
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); ok {
		switch delim {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
	// string, json.Number, bool or nil
	return tok, nil
}

const indentStep = "  "

// Encode serializes an ordered tree with 2-space indentation, literal
// non-ASCII text, and no trailing newline. Encoding the same tree twice
// yields identical bytes.
func Encode(doc *Map) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, doc, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v any, indent string) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString("null")
	case string:
		q, err := quote(t)
		if err != nil {
			return err
		}
		buf.Write(q)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		if t {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case int:
		fmt.Fprintf(buf, "%d", t)
	case int64:
		fmt.Fprintf(buf, "%d", t)
	case []any:
		return encodeArray(buf, t, indent)
	case *Map:
		return encodeObject(buf, t, indent)
	default:
		// Types the decoder never produces; marshal in place.
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

func encodeObject(buf *bytes.Buffer, obj *Map, indent string) error {
	if obj == nil || obj.Len() == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteString("{\n")
	inner := indent + indentStep
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		buf.WriteString(inner)
		q, err := quote(pair.Key)
		if err != nil {
			return err
		}
		buf.Write(q)
		buf.WriteString(": ")
		if err := encodeValue(buf, pair.Value, inner); err != nil {
			return err
		}
		if pair.Next() != nil {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(indent)
	buf.WriteByte('}')
	return nil
}

func encodeArray(buf *bytes.Buffer, arr []any, indent string) error {
	if len(arr) == 0 {
		buf.WriteString("[]")
		return nil
	}
	buf.WriteString("[\n")
	inner := indent + indentStep
	for i, el := range arr {
		buf.WriteString(inner)
		if err := encodeValue(buf, el, inner); err != nil {
			return err
		}
		if i < len(arr)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(indent)
	buf.WriteByte(']')
	return nil
}

// quote renders a JSON string without HTML escaping, so source code in
// cells keeps its literal <, > and & characters.
func quote(s string) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}
