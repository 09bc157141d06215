package orm

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"tidb-orm/internal/logging"
	"tidb-orm/internal/ormerrors"
	"tidb-orm/internal/query"
)

// QueryBuilder reads models of type P. Each call to All or First is an
// independent execution with its own EagerLoads registry.
type QueryBuilder[P Model] struct {
	db         *Database
	query      query.Query
	eagerLoads []eagerLoadSpec[P]
	err        error
}

type eagerLoadSpec[P Model] struct {
	selector func(P) EagerLoadable
	method   EagerLoadMethod
}

// Query starts a query projecting every field of P.
func Query[P Model](db *Database) *QueryBuilder[P] {
	entity := schemaOf[P]()
	return &QueryBuilder[P]{
		db:    db,
		query: query.New(entity.Name, entity.FieldNames()...),
	}
}

// Filter restricts the query on one of P's fields.
func (b *QueryBuilder[P]) Filter(field string, op query.Operator, value any) *QueryBuilder[P] {
	b.query.AddFilter(query.Field{Entity: b.query.Entity, Name: field}, op, value)
	return b
}

// Limit caps the number of owning rows.
func (b *QueryBuilder[P]) Limit(n int) *QueryBuilder[P] {
	b.query.Limit = n
	return b
}

// With eager loads the relationship picked by selector using method.
func (b *QueryBuilder[P]) With(selector func(P) EagerLoadable, method EagerLoadMethod) *QueryBuilder[P] {
	b.eagerLoads = append(b.eagerLoads, eagerLoadSpec[P]{selector: selector, method: method})
	return b
}

// SQL renders the statement one execution would send, eager load joins
// included.
func (b *QueryBuilder[P]) SQL() (query.SQLQuery, error) {
	q, _, err := b.prepare(context.Background())
	if err != nil {
		return query.SQLQuery{}, err
	}
	return query.Build(q)
}

// All runs the query, then its eager loads, then decodes every row.
func (b *QueryBuilder[P]) All(ctx context.Context) (_ []P, err error) {
	q, eagerLoads, err := b.prepare(ctx)
	if err != nil {
		return nil, err
	}

	ctx, span := startSpan(ctx, "orm.query",
		attribute.String("orm.entity", q.Entity),
		attribute.String("orm.execution_id", eagerLoads.ID()),
		attribute.Int("orm.eager_loads", eagerLoads.Len()),
	)
	defer func() { finishSpan(span, err) }()

	records, err := b.db.runQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	rows := make([]*Row, len(records))
	for i, rec := range records {
		rows[i] = NewRow(rec, eagerLoads)
	}
	if err := eagerLoads.Run(ctx, rows, b.db); err != nil {
		return nil, err
	}

	models := make([]P, 0, len(rows))
	for _, row := range rows {
		model := New[P]()
		if err := model.Output(row); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", q.Entity, err)
		}
		models = append(models, model)
	}

	logging.FromContext(ctx).Debug("query complete",
		slog.String("query", q.String()),
		slog.String("query_id", eagerLoads.ID()),
		slog.Int("rows", len(models)),
		slog.Int("eager_loads", eagerLoads.Len()),
	)
	return models, nil
}

// First runs the query with a limit of one. found is false when no row
// matched.
func (b *QueryBuilder[P]) First(ctx context.Context) (model P, found bool, err error) {
	next := *b
	next.query = b.query.Clone()
	next.query.Limit = 1
	next.eagerLoads = slices.Clone(b.eagerLoads)

	models, err := next.All(ctx)
	if err != nil || len(models) == 0 {
		return model, false, err
	}
	return models[0], true, nil
}

// prepare builds a fresh registry and the query it mutated. The builder's own
// query is never modified.
func (b *QueryBuilder[P]) prepare(ctx context.Context) (query.Query, *EagerLoads, error) {
	if b.err != nil {
		return query.Query{}, nil, b.err
	}

	q := b.query.Clone()
	eagerLoads := NewEagerLoads()
	if len(b.eagerLoads) > 0 {
		prototype := New[P]()
		owner := prototype.Schema()
		for _, pending := range b.eagerLoads {
			relation := pending.selector(prototype)
			if !owner.HasField(relation.FieldName()) {
				return query.Query{}, nil, &ormerrors.MissingFieldError{Name: owner.Name + "." + relation.FieldName()}
			}
			if err := relation.AddEagerLoad(pending.method, eagerLoads); err != nil {
				return query.Query{}, nil, err
			}
		}
	}

	for _, entity := range eagerLoads.Replaced() {
		logging.FromContext(ctx).Warn("eager load replaced, last registration wins",
			slog.String("entity", entity),
			slog.String("query", q.Entity),
			slog.String("query_id", eagerLoads.ID()),
		)
	}

	if err := eagerLoads.Prepare(&q); err != nil {
		return query.Query{}, nil, err
	}
	return q, eagerLoads, nil
}
