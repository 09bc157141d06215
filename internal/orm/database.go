package orm

import (
	"context"
	"fmt"

	"tidb-orm/internal/dbexec"
	"tidb-orm/internal/observability"
	"tidb-orm/internal/query"
	"tidb-orm/internal/record"
)

// Database runs rendered queries through an executor.
type Database struct {
	executor    dbexec.QueryExecutor
	metrics     *observability.EagerLoadMetrics
	maxInClause int
	concurrency int
}

// Option configures a Database.
type Option func(*Database)

// WithMetrics records eager load metrics.
func WithMetrics(metrics *observability.EagerLoadMetrics) Option {
	return func(db *Database) {
		db.metrics = metrics
	}
}

// WithMaxInClause splits subquery lookups into chunks of at most n keys.
// Zero or less means a single query regardless of key count.
func WithMaxInClause(n int) Option {
	return func(db *Database) {
		db.maxInClause = n
	}
}

// WithConcurrency bounds how many eager loads of one query run at once.
func WithConcurrency(n int) Option {
	return func(db *Database) {
		if n < 1 {
			n = 1
		}
		db.concurrency = n
	}
}

// NewDatabase wraps executor. Eager loads run one at a time by default.
func NewDatabase(executor dbexec.QueryExecutor, opts ...Option) *Database {
	db := &Database{executor: executor, concurrency: 1}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Executor returns the underlying executor.
func (db *Database) Executor() dbexec.QueryExecutor {
	return db.executor
}

func (db *Database) runQuery(ctx context.Context, q query.Query) ([]record.Record, error) {
	built, err := query.Build(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.executor.QueryContext(ctx, built.SQL, built.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.Entity, err)
	}
	defer rows.Close()

	records, err := record.Scan(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s rows: %w", q.Entity, err)
	}
	return records, nil
}
