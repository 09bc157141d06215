package orm

import (
	"fmt"
	"reflect"

	"tidb-orm/internal/naming"
	"tidb-orm/internal/ormerrors"
	"tidb-orm/internal/schema"
)

// Model is a storable type. Output binds the model from a decoded row and
// Encode writes its public representation.
type Model interface {
	Schema() schema.Entity
	Output(row *Row) error
	Encode(enc *Encoder) error
}

// Entity is a model identified by a primary key of type ID.
type Entity[ID comparable] interface {
	Model
	PrimaryKey() (ID, bool)
}

// Inputter is implemented by models that can be written with Create.
type Inputter interface {
	Input(values map[string]any)
}

// Decodable is implemented by models that can be read with UnmarshalModel.
type Decodable interface {
	Decode(dec *Decoder) error
}

// relationBinder is implemented by relationship fields that learn their
// logical name from the enclosing struct.
type relationBinder interface {
	bindName(name string)
}

// New allocates a model and binds its relationship fields. P must be a
// pointer to a struct. An untagged field named Galaxy or GalaxyID both bind
// the relationship "galaxy".
func New[P Model]() P {
	t := reflect.TypeFor[P]()
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("orm: model type %s must be a pointer to a struct", t))
	}
	v := reflect.New(t.Elem())
	bindRelations(v.Elem())
	return v.Interface().(P)
}

// Bind names the relationship fields of a model constructed without New.
// Fields that already carry a name are left alone.
func Bind(m Model) {
	v := reflect.ValueOf(m)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return
	}
	bindRelations(v.Elem())
}

// bindRelations uses the `orm` tag when present, else the snake-cased Go
// field name without its foreign key suffix.
func bindRelations(v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		binder, ok := v.Field(i).Addr().Interface().(relationBinder)
		if !ok {
			continue
		}
		name := field.Tag.Get("orm")
		if name == "" {
			name = naming.RelationshipName(naming.ToSnakeCase(field.Name))
		}
		binder.bindName(name)
	}
}

// RequireID returns the entity's primary key or an IDRequiredError.
func RequireID[ID comparable](e Entity[ID]) (ID, error) {
	id, ok := e.PrimaryKey()
	if !ok {
		return id, &ormerrors.IDRequiredError{Entity: e.Schema().Name}
	}
	return id, nil
}

func schemaOf[P Model]() schema.Entity {
	return New[P]().Schema()
}
