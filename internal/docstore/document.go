package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Document is one stored JSON document as returned by the store. Documents
// read back from the store carry their identifier under the "id" key.
type Document json.RawMessage

// Decode unmarshals the document into v.
func (d Document) Decode(v any) error {
	if err := json.Unmarshal(d, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DecodeAll decodes every document into a T, preserving order. It never
// returns a nil slice.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Filter is an equality match on top-level document fields. Values must be
// strings, booleans or numbers.
type Filter map[string]any

// keys returns the filter fields in a stable order.
func (f Filter) keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f Filter) validate() error {
	for _, k := range f.keys() {
		if err := checkName("filter", k); err != nil {
			return err
		}
		switch f[k].(type) {
		case string, bool, int, int32, int64, float32, float64:
		default:
			return &ValidationError{Field: k, Reason: fmt.Sprintf("unsupported filter value of type %T", f[k])}
		}
	}
	return nil
}

// encodeObject marshals doc and checks that it is a JSON object. Any "id"
// key is dropped: the identifier lives in its own column and is injected on
// read.
func encodeObject(doc any) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	if !isObject(raw) {
		return nil, &ValidationError{Field: "document", Reason: "must encode to a JSON object"}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Field: "document", Reason: err.Error()}
	}
	if _, ok := fields["id"]; !ok {
		return raw, nil
	}
	delete(fields, "id")
	return json.Marshal(fields)
}

func isObject(raw []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{"))
}

// encodeValue marshals a child document for an array append.
func encodeValue(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, &ValidationError{Field: "child", Reason: err.Error()}
	}
	return raw, nil
}
