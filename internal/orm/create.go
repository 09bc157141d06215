package orm

import (
	"context"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"

	"tidb-orm/internal/sqlutil"
)

// Create inserts m and rebinds it from the written values, so pending
// foreign keys become decoded ones. When the model did not set its primary
// key, the generated key is read back from the insert result.
func Create(ctx context.Context, db *Database, m Model) error {
	inputter, ok := m.(Inputter)
	if !ok {
		return fmt.Errorf("model %T does not accept input", m)
	}
	Bind(m)

	entity := m.Schema()
	values := make(map[string]any)
	inputter.Input(values)
	if len(values) == 0 {
		return fmt.Errorf("no values to insert into %s", entity.Name)
	}

	columns := make([]string, 0, len(values))
	for name := range values {
		columns = append(columns, name)
	}
	sort.Strings(columns)

	quoted := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, name := range columns {
		quoted[i] = sqlutil.QuoteIdentifier(name)
		args[i] = values[name]
	}

	statement, stmtArgs, err := sq.Insert(sqlutil.QuoteIdentifier(entity.Name)).
		Columns(quoted...).
		Values(args...).
		PlaceholderFormat(sq.Question).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert for %s: %w", entity.Name, err)
	}

	result, err := db.executor.ExecContext(ctx, statement, stmtArgs...)
	if err != nil {
		return fmt.Errorf("failed to insert %s: %w", entity.Name, err)
	}

	if pk, ok := entity.PrimaryKey(); ok {
		if _, set := values[pk.Name]; !set {
			id, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to read generated key for %s: %w", entity.Name, err)
			}
			values[pk.Name] = id
		}
	}
	for _, field := range entity.Fields {
		if _, ok := values[field.Name]; !ok {
			values[field.Name] = nil
		}
	}

	return m.Output(NewRow(values, nil))
}
