package dbexec

import (
	"context"
	"database/sql"
	"sync/atomic"
)

// CountingExecutor wraps another executor and counts the round trips that
// pass through it. It is safe for concurrent use.
type CountingExecutor struct {
	next       QueryExecutor
	queries    atomic.Int64
	statements atomic.Int64
}

// NewCountingExecutor wraps next.
func NewCountingExecutor(next QueryExecutor) *CountingExecutor {
	return &CountingExecutor{next: next}
}

func (e *CountingExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	e.queries.Add(1)
	return e.next.QueryContext(ctx, query, args...)
}

func (e *CountingExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	e.statements.Add(1)
	return e.next.ExecContext(ctx, query, args...)
}

// Queries returns the number of QueryContext calls, failed ones included.
func (e *CountingExecutor) Queries() int64 {
	return e.queries.Load()
}

// Statements returns the number of ExecContext calls.
func (e *CountingExecutor) Statements() int64 {
	return e.statements.Load()
}

// Reset zeroes both counters and returns the query count it discarded.
func (e *CountingExecutor) Reset() int64 {
	e.statements.Store(0)
	return e.queries.Swap(0)
}
