package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"tidb-orm/internal/query"
)

// EagerLoads maps referenced entity names to the request resolving them for
// one query execution. It is written while the query is prepared and only
// read once rows are decoded.
type EagerLoads struct {
	id       string
	requests map[string]EagerLoadRequest
	order    []string
	replaced []string
}

// NewEagerLoads creates an empty registry with a fresh execution ID.
func NewEagerLoads() *EagerLoads {
	return &EagerLoads{
		id:       uuid.NewString(),
		requests: make(map[string]EagerLoadRequest),
	}
}

// ID identifies the query execution in logs and spans.
func (e *EagerLoads) ID() string {
	return e.id
}

// Register stores req for entity and returns the request it replaced, if any.
// The last registration for an entity wins.
func (e *EagerLoads) Register(entity string, req EagerLoadRequest) EagerLoadRequest {
	previous, ok := e.requests[entity]
	if ok {
		e.replaced = append(e.replaced, entity)
	} else {
		e.order = append(e.order, entity)
	}
	e.requests[entity] = req
	return previous
}

// Lookup returns the request registered for entity. A nil registry has none.
func (e *EagerLoads) Lookup(entity string) EagerLoadRequest {
	if e == nil {
		return nil
	}
	return e.requests[entity]
}

// Len returns the number of registered requests.
func (e *EagerLoads) Len() int {
	if e == nil {
		return 0
	}
	return len(e.requests)
}

// Entities returns the registered entity names in registration order.
func (e *EagerLoads) Entities() []string {
	return append([]string(nil), e.order...)
}

// Replaced lists entities whose request was overwritten by a later
// registration, once per overwrite.
func (e *EagerLoads) Replaced() []string {
	return append([]string(nil), e.replaced...)
}

// Prepare lets every request mutate q before it is sent.
func (e *EagerLoads) Prepare(q *query.Query) error {
	for _, entity := range e.order {
		if err := e.requests[entity].Prepare(q); err != nil {
			return fmt.Errorf("failed to prepare eager load for %s: %w", entity, err)
		}
	}
	return nil
}

// Run populates every request from rows. The first failure stops the
// remaining requests and is returned; results are never partial. Requests run
// on the calling goroutine unless the database allows more than one at a time.
func (e *EagerLoads) Run(ctx context.Context, rows []*Row, db *Database) error {
	if e.Len() == 0 {
		return nil
	}

	if db.concurrency <= 1 {
		for _, entity := range e.order {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := e.runRequest(ctx, entity, e.requests[entity], rows, db); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(db.concurrency)
	for _, entity := range e.order {
		req := e.requests[entity]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return e.runRequest(gctx, entity, req, rows, db)
		})
	}
	return g.Wait()
}

func (e *EagerLoads) runRequest(ctx context.Context, entity string, req EagerLoadRequest, rows []*Row, db *Database) (err error) {
	method := req.Method().String()
	ctx, span := startSpan(ctx, "orm.eager_load.run",
		attribute.String("orm.eager_load.method", method),
		attribute.String("orm.entity", entity),
		attribute.String("orm.execution_id", e.id),
		attribute.Int("orm.rows", len(rows)),
	)
	defer func() {
		finishSpan(span, err)
		db.metrics.RecordRequest(ctx, method, entity, err)
	}()

	return req.Run(ctx, rows, db)
}
