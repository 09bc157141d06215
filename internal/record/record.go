// Package record holds one decoded result row as a column map and decodes
// individual columns into typed values.
//
// Columns projected for a joined entity carry an alias prefix
// (`galaxies_id`, `galaxies_name`); Scope returns the prefix-stripped view so
// the joined entity can be decoded with its own field names.
package record

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"

	"tidb-orm/internal/dbexec"
	"tidb-orm/internal/ormerrors"
)

// Record is a single result row keyed by column name or alias.
type Record map[string]any

// Value returns the raw value for a column.
func (r Record) Value(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Has reports whether the column was projected.
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// IsNull reports whether the column is absent or SQL NULL.
func (r Record) IsNull(name string) bool {
	v, ok := r[name]
	return !ok || v == nil
}

// Columns returns the column names in sorted order.
func (r Record) Columns() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scope returns the columns starting with prefix, with the prefix removed.
func (r Record) Scope(prefix string) Record {
	scoped := make(Record)
	for name, value := range r {
		if len(name) > len(prefix) && strings.HasPrefix(name, prefix) {
			scoped[name[len(prefix):]] = value
		}
	}
	return scoped
}

// Decode converts the named column to T. An absent column is a
// MissingFieldError; SQL NULL decodes to the zero value.
func Decode[T any](r Record, name string) (T, error) {
	var out T
	raw, ok := r[name]
	if !ok {
		return out, &ormerrors.MissingFieldError{Name: name}
	}
	out, err := DecodeValue[T](raw)
	if err != nil {
		return out, fmt.Errorf("failed to decode field %s: %w", name, err)
	}
	return out, nil
}

// DecodeOptional converts the named column to *T, returning nil for SQL NULL.
func DecodeOptional[T any](r Record, name string) (*T, error) {
	raw, ok := r[name]
	if !ok {
		return nil, &ormerrors.MissingFieldError{Name: name}
	}
	if raw == nil {
		return nil, nil
	}
	out, err := DecodeValue[T](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode field %s: %w", name, err)
	}
	return &out, nil
}

// DecodeValue converts a driver value to T using weakly typed decoding, so
// "10", []byte("10") and int64(10) all decode into an int64 key.
func DecodeValue[T any](raw any) (T, error) {
	var out T
	if raw == nil {
		return out, nil
	}
	if typed, ok := raw.(T); ok {
		return typed, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook:       bytesToStringHook,
	})
	if err != nil {
		return out, err
	}
	if err := decoder.Decode(raw); err != nil {
		return out, err
	}
	return out, nil
}

func bytesToStringHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	b, ok := data.([]byte)
	if !ok || to.Kind() == reflect.Slice {
		return data, nil
	}
	return cast.ToStringE(b)
}

// Scan reads every row into a Record keyed by the result set's column names.
// The caller remains responsible for closing rows.
func Scan(rows dbexec.Rows) ([]Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	var results []Record
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			rec[col] = convertValue(values[i])
		}
		results = append(results, rec)
	}

	return results, rows.Err()
}

func convertValue(val interface{}) interface{} {
	if b, ok := val.([]byte); ok {
		return string(b)
	}
	return val
}
