package orm

import (
	"context"
	"fmt"
	"strings"

	"tidb-orm/internal/query"
)

// EagerLoadMethod selects how a relationship is resolved for a query.
type EagerLoadMethod int

const (
	// Subquery issues one extra query over the distinct foreign keys.
	Subquery EagerLoadMethod = iota
	// Join folds an inner join into the owning query.
	Join
)

func (m EagerLoadMethod) String() string {
	switch m {
	case Subquery:
		return "subquery"
	case Join:
		return "join"
	default:
		return fmt.Sprintf("EagerLoadMethod(%d)", int(m))
	}
}

// ParseEagerLoadMethod parses "subquery" or "join".
func ParseEagerLoadMethod(value string) (EagerLoadMethod, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "subquery":
		return Subquery, nil
	case "join":
		return Join, nil
	default:
		return 0, fmt.Errorf("unknown eager load method %q (use subquery or join)", value)
	}
}

// EagerLoadRequest resolves one relationship for one query execution.
// Prepare runs before the owning query is sent; Run runs after its rows are
// fetched and before any row is decoded. Only this package implements it.
type EagerLoadRequest interface {
	Method() EagerLoadMethod
	Prepare(q *query.Query) error
	Run(ctx context.Context, rows []*Row, db *Database) error
	eagerLoadRequest()
}

// parentLoader is the typed lookup side of a request.
type parentLoader[ID comparable, P Entity[ID]] interface {
	EagerLoadRequest
	get(id ID) (P, bool)
}

// EagerLoadable is a relationship that can register an eager load. FieldName
// is the owning entity's column holding the referenced key.
type EagerLoadable interface {
	FieldName() string
	AddEagerLoad(method EagerLoadMethod, eagerLoads *EagerLoads) error
}

// loadedParents holds the entities a request resolved, by primary key.
type loadedParents[ID comparable, P Entity[ID]] struct {
	byID map[ID]P
}

func (l *loadedParents[ID, P]) get(id ID) (P, bool) {
	parent, ok := l.byID[id]
	return parent, ok
}

func (l *loadedParents[ID, P]) store(parents map[ID]P) {
	l.byID = parents
}
