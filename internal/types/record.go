// Package types contains the record structures shared by the extraction
// sources, the coordinator, and the landing writer.
package types

import (
	"bytes"
	"fmt"

	"github.com/elliotchance/orderedmap/v2"
	json "github.com/goccy/go-json"
)

// Record is a single extracted entity: an insertion-ordered mapping of field
// name to value. No schema is enforced; field order is preserved exactly as
// produced by the backend, so a JSON round-trip emits fields in wire order.
// Numbers decode as json.Number to survive re-encoding unchanged.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// Batch is one page of records read from a paginated source, bounded by the
// configured batch size.
type Batch []*Record

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.NewOrderedMap[string, any]()}
}

// Set stores value under key, appending the key to the field order when it
// is new and keeping its position when it already exists.
func (r *Record) Set(key string, value any) {
	if r.fields == nil {
		r.fields = orderedmap.NewOrderedMap[string, any]()
	}
	r.fields.Set(key, value)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns the field names in insertion order.
func (r *Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	return r.fields.Keys()
}

// MarshalJSON encodes the record as a JSON object with fields in insertion
// order.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil || r.fields == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for el := r.fields.Front(); el != nil; el = el.Next() {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(el.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal field name %q: %w", el.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(el.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", el.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object via the token stream so the incoming
// field order is preserved. Nested objects decode as *Record, arrays as
// []any, numbers as json.Number.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode record: expected object, got %v", tok)
	}

	fields, err := decodeObject(dec)
	if err != nil {
		return err
	}
	r.fields = fields
	return nil
}

// decodeObject reads key/value pairs up to and including the closing brace.
func decodeObject(dec *json.Decoder) (*orderedmap.OrderedMap[string, any], error) {
	fields := orderedmap.NewOrderedMap[string, any]()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode record key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode record: non-string key %v", keyTok)
		}
		value, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("decode record field %q: %w", key, err)
		}
		fields.Set(key, value)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return fields, nil
}

// decodeValue reads one JSON value from the token stream.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool, or nil
		return tok, nil
	}

	switch delim {
	case '{':
		fields, err := decodeObject(dec)
		if err != nil {
			return nil, err
		}
		return &Record{fields: fields}, nil
	case '[':
		arr := []any{}
		for dec.More() {
			el, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, el)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
