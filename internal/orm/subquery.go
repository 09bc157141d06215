package orm

import (
	"context"
	"fmt"

	"tidb-orm/internal/query"
)

type subqueryLoader[ID comparable, P Entity[ID]] struct {
	loadedParents[ID, P]
	foreignKey string
}

func newSubqueryLoader[ID comparable, P Entity[ID]](foreignKey string) *subqueryLoader[ID, P] {
	return &subqueryLoader[ID, P]{foreignKey: foreignKey}
}

func (l *subqueryLoader[ID, P]) eagerLoadRequest() {}

func (l *subqueryLoader[ID, P]) Method() EagerLoadMethod {
	return Subquery
}

// Prepare leaves the owning query untouched.
func (l *subqueryLoader[ID, P]) Prepare(*query.Query) error {
	return nil
}

// Run collects the distinct foreign keys of rows and fetches the referenced
// entities with `pk IN (...)`, one query per chunk of the database's
// MaxInClause (a single query when unlimited).
func (l *subqueryLoader[ID, P]) Run(ctx context.Context, rows []*Row, db *Database) error {
	ids, err := uniqueForeignKeys[ID](rows, l.foreignKey)
	if err != nil {
		return err
	}

	entity := schemaOf[P]()
	parents := make(map[ID]P, len(ids))
	if len(ids) == 0 {
		l.store(parents)
		db.metrics.RecordSubquery(ctx, entity.Name, 0, 0, len(rows))
		return nil
	}

	pk, err := entity.RequirePrimaryKey()
	if err != nil {
		return err
	}

	chunks := chunkIDs(ids, db.maxInClause)
	for _, chunk := range chunks {
		results, err := Query[P](db).Filter(pk.Name, query.In, chunk).All(ctx)
		if err != nil {
			return fmt.Errorf("failed to eager load %s: %w", entity.Name, err)
		}
		for _, parent := range results {
			id, err := RequireID[ID](parent)
			if err != nil {
				return err
			}
			parents[id] = parent
		}
	}

	l.store(parents)
	db.metrics.RecordSubquery(ctx, entity.Name, len(ids), len(chunks), len(rows))
	db.metrics.RecordResolved(ctx, Subquery.String(), entity.Name, len(parents))
	return nil
}

// uniqueForeignKeys returns the distinct non-NULL keys in first-seen order.
// A row without the column fails the whole batch.
func uniqueForeignKeys[ID comparable](rows []*Row, column string) ([]ID, error) {
	seen := make(map[ID]struct{}, len(rows))
	ids := make([]ID, 0, len(rows))
	for _, row := range rows {
		id, err := DecodeOptional[ID](row, column)
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign key %s: %w", column, err)
		}
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	return ids, nil
}

func chunkIDs[ID any](ids []ID, max int) [][]ID {
	if len(ids) == 0 {
		return nil
	}
	if max <= 0 || len(ids) <= max {
		return [][]ID{ids}
	}
	chunks := make([][]ID, 0, (len(ids)+max-1)/max)
	for start := 0; start < len(ids); start += max {
		end := min(start+max, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
