// Package schema describes the static shape of an entity: its storage name,
// its ordered fields and which of them form the primary key.
package schema

import "fmt"

// Field represents a stored column of an entity.
type Field struct {
	Name         string
	IsPrimaryKey bool
}

// Entity represents an entity's storage description.
type Entity struct {
	Name   string
	Fields []Field
}

// ErrNoPrimaryKey is returned when an entity declares no primary key field.
var ErrNoPrimaryKey = fmt.Errorf("entity has no primary key")

// PrimaryKey returns the first primary key field, if present.
func (e Entity) PrimaryKey() (Field, bool) {
	for _, f := range e.Fields {
		if f.IsPrimaryKey {
			return f, true
		}
	}
	return Field{}, false
}

// RequirePrimaryKey returns the primary key field or an error naming the entity.
func (e Entity) RequirePrimaryKey() (Field, error) {
	pk, ok := e.PrimaryKey()
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrNoPrimaryKey, e.Name)
	}
	return pk, nil
}

// FieldNames returns the field names in declaration order.
func (e Entity) FieldNames() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

// HasField reports whether the entity declares a field with the given name.
func (e Entity) HasField(name string) bool {
	for _, f := range e.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
