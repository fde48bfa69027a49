package digest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Object is a JSON object that remembers the order its keys appeared in.
// Values are kept undecoded so unknown fields pass through byte for byte.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

func NewObject() *Object {
	return &Object{values: make(map[string]json.RawMessage)}
}

func (o *Object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read object: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	o.keys = nil
	o.values = make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read object key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("failed to read value of %q: %w", key, err)
		}
		o.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}

	return nil
}

func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		encodedKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')

		value := o.values[key]
		if len(value) == 0 {
			buf.WriteString("null")
		} else {
			buf.Write(value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	if o == nil || o.values == nil {
		return nil, false
	}
	value, ok := o.values[key]
	return value, ok
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// SetValue marshals v and stores it under key.
func (o *Object) SetValue(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	o.Set(key, data)
	return nil
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.keys))
	copy(keys, o.keys)
	return keys
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Clone returns a shallow copy; raw values are shared.
func (o *Object) Clone() *Object {
	clone := &Object{
		keys:   make([]string, len(o.keys)),
		values: make(map[string]json.RawMessage, len(o.values)),
	}
	copy(clone.keys, o.keys)
	for k, v := range o.values {
		clone.values[k] = v
	}
	return clone
}

// jsonKind reports the first significant byte of a raw value:
// '{', '[', '"', 'n' (null), 't'/'f', or a digit/'-' for numbers.
func jsonKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || jsonKind(raw) == 'n'
}

func isArray(raw json.RawMessage) bool {
	return jsonKind(raw) == '['
}

func isObject(raw json.RawMessage) bool {
	return jsonKind(raw) == '{'
}
