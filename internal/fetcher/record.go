package fetcher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotArray is returned by ParseRecords when the body is valid JSON but not an array.
var ErrNotArray = errors.New("response body is not a JSON array")

// Record is one object of an API response. It keeps the field order of the
// JSON object so that column order in the output follows the API.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from alternating key/value pairs.
// It panics if pairs has an odd length or a key is not a string.
func NewRecord(pairs ...any) Record {
	if len(pairs)%2 != 0 {
		panic("fetcher.NewRecord: odd number of arguments")
	}
	r := Record{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("fetcher.NewRecord: key %v is not a string", pairs[i]))
		}
		r.set(key, pairs[i+1])
	}
	return r
}

func (r *Record) set(key string, value any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the field names in the order they appeared.
func (r Record) Keys() []string {
	return r.keys
}

// Get returns the value of a field and whether it was present.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object in its original key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String renders the record as compact JSON, which is how log handlers show it.
func (r Record) String() string {
	b, err := r.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<record: %v>", err)
	}
	return string(b)
}

func decodeObject(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return Record{}, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return Record{}, fmt.Errorf("expected JSON object, got %v", tok)
	}

	rec := Record{values: make(map[string]any)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Record{}, fmt.Errorf("expected object key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return Record{}, fmt.Errorf("decoding field %q: %w", key, err)
		}
		rec.set(key, value)
	}

	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ParseRecords decodes a JSON array of objects. A body that is valid JSON
// but not an array yields ErrNotArray.
func ParseRecords(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrNotArray)
	}
	if trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, errors.New("response body is not valid JSON")
		}
		return nil, ErrNotArray
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	// opening '['
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	records := []Record{}
	for dec.More() {
		rec, err := decodeObject(dec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", len(records), err)
		}
		records = append(records, rec)
	}

	// closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON array")
	}
	return records, nil
}
