// Package query models the abstract query a model builder produces and
// renders it to MySQL-dialect SQL.
//
// Eager loads mutate the query before it is rendered: the join strategy adds
// an inner join and entity-scoped, aliased projections; the subquery strategy
// issues a second query filtered with an IN set.
package query

import (
	"fmt"
	"strings"
)

// Operator is a filter comparison.
type Operator string

const (
	Equal Operator = "="
	In    Operator = "IN"
)

// JoinMethod selects the SQL join flavour.
type JoinMethod int

const (
	InnerJoin JoinMethod = iota
)

func (m JoinMethod) String() string {
	switch m {
	case InnerJoin:
		return "inner"
	default:
		return fmt.Sprintf("JoinMethod(%d)", int(m))
	}
}

// Field references a column, optionally scoped to an entity and aliased in the projection.
type Field struct {
	Entity string
	Name   string
	Alias  string
}

// Filter restricts the result set. For In, Value must be a slice.
type Filter struct {
	Field    Field
	Operator Operator
	Value    any
}

// Join links the query's entity to a foreign entity.
type Join struct {
	Local   Field
	Foreign Field
	Method  JoinMethod
}

// Query describes a read against one entity.
type Query struct {
	Entity  string
	Fields  []Field
	Filters []Filter
	Joins   []Join
	Limit   int
}

// New creates a query selecting the given fields from entity. Bare field names
// are scoped to entity.
func New(entity string, fields ...string) Query {
	q := Query{Entity: entity}
	for _, name := range fields {
		q.AddField(Field{Entity: entity, Name: name})
	}
	return q
}

// AddFilter appends a filter.
func (q *Query) AddFilter(field Field, op Operator, value any) {
	q.Filters = append(q.Filters, Filter{Field: field, Operator: op, Value: value})
}

// AddJoin appends a join between a local and a foreign field.
func (q *Query) AddJoin(local, foreign Field, method JoinMethod) {
	q.Joins = append(q.Joins, Join{Local: local, Foreign: foreign, Method: method})
}

// AddField appends a projected field.
func (q *Query) AddField(field Field) {
	q.Fields = append(q.Fields, field)
}

// Clone returns a deep copy so eager-load preparation never leaks into the
// builder's base query.
func (q Query) Clone() Query {
	out := q
	out.Fields = append([]Field(nil), q.Fields...)
	out.Filters = append([]Filter(nil), q.Filters...)
	out.Joins = append([]Join(nil), q.Joins...)
	return out
}

// String renders a compact description for logs.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.Entity)
	for _, j := range q.Joins {
		fmt.Fprintf(&b, " %s join %s", j.Method, j.Foreign.Entity)
	}
	if len(q.Filters) > 0 {
		fmt.Fprintf(&b, " (%d filters)", len(q.Filters))
	}
	return b.String()
}
