package orm

import (
	"context"
	"fmt"

	gojson "github.com/goccy/go-json"

	"tidb-orm/internal/naming"
	"tidb-orm/internal/ormerrors"
	"tidb-orm/internal/query"
)

// Parent is a to-one relationship from the owning model to P. The foreign key
// is stored as `<name>_id`; the encoded key is the bare name.
type Parent[ID comparable, P Entity[ID]] struct {
	name   string
	id     ForeignKeyField[ID]
	loader parentLoader[ID, P]
}

// NewParent creates a relationship with an explicit logical name. Fields
// left zero are named by New or Bind.
func NewParent[ID comparable, P Entity[ID]](name string) Parent[ID, P] {
	return Parent[ID, P]{
		name: name,
		id:   NewForeignKeyField[ID](naming.ForeignKeyColumn(name)),
	}
}

func (p *Parent[ID, P]) bindName(name string) {
	if p.name != "" {
		return
	}
	p.name = name
	p.id.name = naming.ForeignKeyColumn(name)
}

// Name returns the logical relationship name.
func (p *Parent[ID, P]) Name() string {
	return p.name
}

// FieldName returns the foreign key column.
func (p *Parent[ID, P]) FieldName() string {
	return p.id.Name()
}

// Key returns the key used when encoding the owning model.
func (p *Parent[ID, P]) Key() string {
	return p.name
}

// Field exposes the underlying foreign key field.
func (p *Parent[ID, P]) Field() *ForeignKeyField[ID] {
	return &p.id
}

// ID returns the current foreign key.
func (p *Parent[ID, P]) ID() ID {
	return p.id.Get()
}

// SetID sets the pending foreign key.
func (p *Parent[ID, P]) SetID(id ID) {
	p.id.Set(id)
}

// Query builds a query for the referenced entity whose primary key equals
// the current foreign key. It does not depend on eager loading.
func (p *Parent[ID, P]) Query(db *Database) *QueryBuilder[P] {
	qb := Query[P](db)
	entity := schemaOf[P]()
	pk, err := entity.RequirePrimaryKey()
	if err != nil {
		qb.err = err
		return qb
	}
	id, ok := p.id.Value()
	if !ok {
		qb.err = fmt.Errorf("relationship %s has no foreign key: %w", p.name, &ormerrors.IDRequiredError{Entity: entity.Name})
		return qb
	}
	return qb.Filter(pk.Name, query.Equal, id)
}

// Get runs the direct query and returns the referenced entity.
func (p *Parent[ID, P]) Get(ctx context.Context, db *Database) (P, error) {
	parent, found, err := p.Query(db).First(ctx)
	if err != nil {
		return parent, err
	}
	if !found {
		return parent, &ormerrors.NotFoundError{
			Entity: schemaOf[P]().Name,
			Key:    fmt.Sprint(p.id.Get()),
		}
	}
	return parent, nil
}

// EagerLoaded returns the referenced entity resolved by the query that
// produced the owning row. It never issues a query.
func (p *Parent[ID, P]) EagerLoaded() (P, error) {
	var zero P
	if p.loader == nil {
		return zero, p.missingEagerLoad()
	}
	id, ok := p.id.Value()
	if !ok {
		return zero, p.missingEagerLoad()
	}
	parent, ok := p.loader.get(id)
	if !ok {
		return zero, p.missingEagerLoad()
	}
	return parent, nil
}

func (p *Parent[ID, P]) missingEagerLoad() error {
	return &ormerrors.MissingEagerLoadError{Name: p.name, Entity: schemaOf[P]().Name}
}

// Output binds the foreign key from row and attaches the eager load the
// row's query registered for P, if any.
func (p *Parent[ID, P]) Output(row *Row) error {
	if p.name == "" {
		return fmt.Errorf("relationship to %s is not bound; allocate the model with orm.New", schemaOf[P]().Name)
	}
	if err := p.id.Output(row); err != nil {
		return err
	}
	p.loader = nil
	if req := row.EagerLoads().Lookup(schemaOf[P]().Name); req != nil {
		if loader, ok := req.(parentLoader[ID, P]); ok {
			p.loader = loader
		}
	}
	return nil
}

// Input writes the pending foreign key.
func (p *Parent[ID, P]) Input(values map[string]any) {
	p.id.Input(values)
}

// Encode nests the eager loaded entity under Key, or writes only
// {<primary key>: <foreign key>} when nothing was loaded.
func (p *Parent[ID, P]) Encode(enc *Encoder) error {
	if parent, err := p.EagerLoaded(); err == nil {
		nested, err := EncodeModel(parent)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", p.name, err)
		}
		return enc.Encode(p.Key(), nested)
	}

	pk, err := schemaOf[P]().RequirePrimaryKey()
	if err != nil {
		return err
	}
	var value any
	if id, ok := p.id.Value(); ok {
		value = id
	}
	return enc.Encode(p.Key(), map[string]any{pk.Name: value})
}

// Decode reads the object under Key. Both the flat and the nested form are
// accepted; only the referenced primary key is recovered.
func (p *Parent[ID, P]) Decode(dec *Decoder) error {
	var object map[string]gojson.RawMessage
	found, err := dec.Decode(p.Key(), &object)
	if err != nil || !found {
		return err
	}

	pk, err := schemaOf[P]().RequirePrimaryKey()
	if err != nil {
		return err
	}
	raw, ok := object[pk.Name]
	if !ok {
		return &ormerrors.MissingFieldError{Name: p.Key() + "." + pk.Name}
	}
	var id *ID
	if err := gojson.Unmarshal(raw, &id); err != nil {
		return fmt.Errorf("failed to decode %s.%s: %w", p.Key(), pk.Name, err)
	}
	if id == nil {
		p.id.ClearInput()
		return nil
	}
	p.id.Set(*id)
	return nil
}

// AddEagerLoad registers a request resolving this relationship with method.
// A request already registered for the same referenced entity is replaced.
func (p *Parent[ID, P]) AddEagerLoad(method EagerLoadMethod, eagerLoads *EagerLoads) error {
	entity := schemaOf[P]().Name
	switch method {
	case Subquery:
		eagerLoads.Register(entity, newSubqueryLoader[ID, P](p.FieldName()))
	case Join:
		eagerLoads.Register(entity, newJoinLoader[ID, P](p.FieldName()))
	default:
		return fmt.Errorf("unsupported eager load method %s", method)
	}
	return nil
}
