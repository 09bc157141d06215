package orm

import (
	"tidb-orm/internal/naming"
	"tidb-orm/internal/record"
)

// Row is one decoded result row together with the eager loads of the query
// that produced it.
type Row struct {
	record.Record
	eagerLoads *EagerLoads
}

// NewRow wraps rec. eagerLoads may be nil for rows that did not come from a
// query execution.
func NewRow(rec record.Record, eagerLoads *EagerLoads) *Row {
	return &Row{Record: rec, eagerLoads: eagerLoads}
}

// EagerLoads returns the registry of the producing query, or nil.
func (r *Row) EagerLoads() *EagerLoads {
	if r == nil {
		return nil
	}
	return r.eagerLoads
}

// joined returns the alias-prefixed columns of entity as a standalone row.
func (r *Row) joined(entity string) *Row {
	return &Row{Record: r.Scope(naming.JoinPrefix(entity))}
}

// Decode reads a required column from row.
func Decode[T any](row *Row, name string) (T, error) {
	return record.Decode[T](row.Record, name)
}

// DecodeOptional reads a nullable column from row.
func DecodeOptional[T any](row *Row, name string) (*T, error) {
	return record.DecodeOptional[T](row.Record, name)
}
