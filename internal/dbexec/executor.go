// Package dbexec provides database query execution abstractions.
// The relationship loader talks to the database only through QueryExecutor,
// so tests can swap in sqlmock and callers can wrap the handle with tracing.
package dbexec

import (
	"context"
	"database/sql"
	"log/slog"

	"tidb-orm/internal/logging"
)

// Rows abstracts sql.Rows to allow wrapped cleanup behavior.
type Rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// QueryExecutor abstracts SQL execution.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// StandardExecutor executes queries directly against a database handle.
type StandardExecutor struct {
	db *sql.DB
}

// NewStandardExecutor creates an executor that runs queries directly against the database.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	logging.FromContext(ctx).Debug("executing query",
		slog.String("sql", query),
		slog.Int("args", len(args)),
	)
	return e.db.QueryContext(ctx, query, args...)
}

func (e *StandardExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	logging.FromContext(ctx).Debug("executing statement",
		slog.String("sql", query),
		slog.Int("args", len(args)),
	)
	return e.db.ExecContext(ctx, query, args...)
}
