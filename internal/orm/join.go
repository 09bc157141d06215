package orm

import (
	"context"
	"fmt"

	"tidb-orm/internal/naming"
	"tidb-orm/internal/query"
)

type joinLoader[ID comparable, P Entity[ID]] struct {
	loadedParents[ID, P]
	foreignKey string
}

func newJoinLoader[ID comparable, P Entity[ID]](foreignKey string) *joinLoader[ID, P] {
	return &joinLoader[ID, P]{foreignKey: foreignKey}
}

func (l *joinLoader[ID, P]) eagerLoadRequest() {}

func (l *joinLoader[ID, P]) Method() EagerLoadMethod {
	return Join
}

// Prepare joins the referenced entity on its primary key and projects every
// referenced field as `<entity>_<field>`.
func (l *joinLoader[ID, P]) Prepare(q *query.Query) error {
	entity := schemaOf[P]()
	pk, err := entity.RequirePrimaryKey()
	if err != nil {
		return err
	}

	q.AddJoin(
		query.Field{Entity: q.Entity, Name: l.foreignKey},
		query.Field{Entity: entity.Name, Name: pk.Name},
		query.InnerJoin,
	)
	for _, field := range entity.Fields {
		q.AddField(query.Field{
			Entity: entity.Name,
			Name:   field.Name,
			Alias:  naming.JoinAlias(entity.Name, field.Name),
		})
	}
	return nil
}

// Run decodes the referenced entity out of each joined row. Every row must
// yield one, since the join is inner.
func (l *joinLoader[ID, P]) Run(ctx context.Context, rows []*Row, db *Database) error {
	entity := schemaOf[P]().Name
	parents := make(map[ID]P, len(rows))
	for _, row := range rows {
		parent := New[P]()
		if err := parent.Output(row.joined(entity)); err != nil {
			return fmt.Errorf("failed to decode joined %s: %w", entity, err)
		}
		id, err := RequireID[ID](parent)
		if err != nil {
			return err
		}
		if _, ok := parents[id]; !ok {
			parents[id] = parent
		}
	}

	l.store(parents)
	db.metrics.RecordJoin(ctx, entity, len(rows))
	db.metrics.RecordResolved(ctx, Join.String(), entity, len(parents))
	return nil
}
