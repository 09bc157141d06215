package query

import (
	"fmt"
	"reflect"

	sq "github.com/Masterminds/squirrel"

	"tidb-orm/internal/sqlutil"
)

// SQLQuery represents a SQL statement and its arguments.
type SQLQuery struct {
	SQL  string
	Args []interface{}
}

// Build renders q as a SELECT statement with `?` placeholders.
func Build(q Query) (SQLQuery, error) {
	if q.Entity == "" {
		return SQLQuery{}, fmt.Errorf("query requires an entity")
	}
	if len(q.Fields) == 0 {
		return SQLQuery{}, fmt.Errorf("query on %s projects no fields", q.Entity)
	}

	columns := make([]string, len(q.Fields))
	for i, f := range q.Fields {
		columns[i] = sqlutil.QuoteAliased(scopeOf(q, f), f.Name, f.Alias)
	}

	builder := sq.Select(columns...).From(sqlutil.QuoteIdentifier(q.Entity))

	for _, j := range q.Joins {
		clause := fmt.Sprintf(
			"%s ON %s = %s",
			sqlutil.QuoteIdentifier(j.Foreign.Entity),
			sqlutil.QuoteQualified(j.Foreign.Entity, j.Foreign.Name),
			sqlutil.QuoteQualified(scopeOf(q, j.Local), j.Local.Name),
		)
		switch j.Method {
		case InnerJoin:
			builder = builder.InnerJoin(clause)
		default:
			return SQLQuery{}, fmt.Errorf("unsupported join method %s", j.Method)
		}
	}

	for _, f := range q.Filters {
		cond, err := filterCondition(q, f)
		if err != nil {
			return SQLQuery{}, err
		}
		builder = builder.Where(cond)
	}

	if q.Limit > 0 {
		builder = builder.Limit(uint64(q.Limit))
	}

	sql, args, err := builder.PlaceholderFormat(sq.Question).ToSql()
	if err != nil {
		return SQLQuery{}, err
	}
	return SQLQuery{SQL: sql, Args: args}, nil
}

func filterCondition(q Query, f Filter) (sq.Sqlizer, error) {
	column := sqlutil.QuoteQualified(scopeOf(q, f.Field), f.Field.Name)
	switch f.Operator {
	case Equal:
		return sq.Eq{column: f.Value}, nil
	case In:
		if !isSlice(f.Value) {
			return nil, fmt.Errorf("IN filter on %s requires a slice, got %T", f.Field.Name, f.Value)
		}
		// sq.Eq renders a slice value as IN (...), and an empty slice as (1=0).
		return sq.Eq{column: f.Value}, nil
	default:
		return nil, fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
}

func scopeOf(q Query, f Field) string {
	if f.Entity != "" {
		return f.Entity
	}
	return q.Entity
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	kind := reflect.TypeOf(v).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}
