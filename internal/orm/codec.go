package orm

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Encoder collects a model's public representation as keyed values.
type Encoder struct {
	values map[string]any
}

// Encode stores value under key. Keys may not repeat.
func (e *Encoder) Encode(key string, value any) error {
	if _, exists := e.values[key]; exists {
		return fmt.Errorf("duplicate key %q", key)
	}
	e.values[key] = value
	return nil
}

// EncodeModel returns the keyed representation of m.
func EncodeModel(m Model) (map[string]any, error) {
	enc := &Encoder{values: make(map[string]any)}
	if err := m.Encode(enc); err != nil {
		return nil, err
	}
	return enc.values, nil
}

// MarshalModel encodes m as a JSON object.
func MarshalModel(m Model) ([]byte, error) {
	values, err := EncodeModel(m)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(values)
}

// Decoder reads keyed values out of a JSON object.
type Decoder struct {
	values map[string]gojson.RawMessage
}

// Has reports whether key is present.
func (d *Decoder) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Decode unmarshals the value under key into dst. found is false when the
// key is absent, in which case dst is untouched.
func (d *Decoder) Decode(key string, dst any) (found bool, err error) {
	raw, ok := d.values[key]
	if !ok {
		return false, nil
	}
	if err := gojson.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// UnmarshalModel decodes a JSON object into a new P.
func UnmarshalModel[P Model](data []byte) (P, error) {
	var zero P
	model := New[P]()
	decodable, ok := any(model).(Decodable)
	if !ok {
		return zero, fmt.Errorf("model %T does not support decoding", model)
	}

	var values map[string]gojson.RawMessage
	if err := gojson.Unmarshal(data, &values); err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", model.Schema().Name, err)
	}
	if err := decodable.Decode(&Decoder{values: values}); err != nil {
		return zero, err
	}
	return model, nil
}
