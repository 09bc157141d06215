package benchmark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	gojson "github.com/goccy/go-json"

	"tidb-orm/internal/dbexec"
	"tidb-orm/internal/logging"
	"tidb-orm/internal/orm"
	"tidb-orm/internal/ormerrors"
)

// Runner loads planets with their galaxies and counts the round trips each
// load needs. A Runner is not safe for concurrent Run calls since they share
// one counter.
type Runner struct {
	counter *dbexec.CountingExecutor
	db      *orm.Database
}

// NewRunner builds a Runner whose database reads through executor.
func NewRunner(executor dbexec.QueryExecutor, opts ...orm.Option) *Runner {
	counter := dbexec.NewCountingExecutor(executor)
	return &Runner{
		counter: counter,
		db:      orm.NewDatabase(counter, opts...),
	}
}

// Database returns the database the runner queries through.
func (r *Runner) Database() *orm.Database {
	return r.db
}

// Result is one strategy's load.
type Result struct {
	Method  orm.EagerLoadMethod
	Planets []*Planet
	Queries int64
	Elapsed time.Duration
}

// Run loads up to limit planets (all when limit <= 0) with method.
func (r *Runner) Run(ctx context.Context, method orm.EagerLoadMethod, limit int) (*Result, error) {
	r.counter.Reset()
	builder := orm.Query[*Planet](r.db).With(withGalaxy, method)
	if limit > 0 {
		builder.Limit(limit)
	}

	start := time.Now()
	planets, err := builder.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s load failed: %w", method, err)
	}
	result := &Result{
		Method:  method,
		Planets: planets,
		Queries: r.counter.Queries(),
		Elapsed: time.Since(start),
	}

	logger := logging.FromContext(ctx).WithFields(slog.String("method", method.String()))
	logger.Info("eager load finished",
		slog.Int("planets", len(planets)),
		slog.Int64("queries", result.Queries),
		slog.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// Galaxies maps each planet id to the id of its eager loaded galaxy.
// Planets whose galaxy was not loaded are left out.
func (r *Result) Galaxies() (map[int64]int64, error) {
	resolved := make(map[int64]int64, len(r.Planets))
	for _, planet := range r.Planets {
		planetID, err := orm.RequireID[int64](planet)
		if err != nil {
			return nil, err
		}
		galaxy, err := planet.Galaxy.EagerLoaded()
		if errors.Is(err, ormerrors.ErrMissingEagerLoad) {
			continue
		}
		if err != nil {
			return nil, err
		}
		galaxyID, err := orm.RequireID[int64](galaxy)
		if err != nil {
			return nil, err
		}
		resolved[planetID] = galaxyID
	}
	return resolved, nil
}

// Report is the printable form of a Result.
type Report struct {
	Method  string              `json:"method"`
	Queries int64               `json:"queries"`
	Elapsed string              `json:"elapsed"`
	Planets []gojson.RawMessage `json:"planets"`
}

// Report encodes every planet, nesting galaxies that were loaded.
func (r *Result) Report() (*Report, error) {
	report := &Report{
		Method:  r.Method.String(),
		Queries: r.Queries,
		Elapsed: r.Elapsed.String(),
		Planets: make([]gojson.RawMessage, 0, len(r.Planets)),
	}
	for _, planet := range r.Planets {
		data, err := orm.MarshalModel(planet)
		if err != nil {
			return nil, err
		}
		report.Planets = append(report.Planets, data)
	}
	return report, nil
}

// Comparison holds one load per strategy over the same owning query.
type Comparison struct {
	Subquery *Result
	Join     *Result
	// Divergent lists planet ids whose galaxy resolved under one strategy
	// only, or to different galaxies. Dangling foreign keys land here: the
	// subquery load keeps the planet unresolved, the join drops it.
	Divergent []int64
}

// Compare runs both strategies. With a limit the two loads can select
// different planets, since the join filters before the limit applies.
func (r *Runner) Compare(ctx context.Context, limit int) (*Comparison, error) {
	subquery, err := r.Run(ctx, orm.Subquery, limit)
	if err != nil {
		return nil, err
	}
	join, err := r.Run(ctx, orm.Join, limit)
	if err != nil {
		return nil, err
	}

	bySubquery, err := subquery.Galaxies()
	if err != nil {
		return nil, err
	}
	byJoin, err := join.Galaxies()
	if err != nil {
		return nil, err
	}

	inSubquery := planetIDs(subquery)
	inJoin := planetIDs(join)
	var divergent []int64
	for id := range unionKeys(inSubquery, inJoin) {
		a, resolvedA := bySubquery[id]
		b, resolvedB := byJoin[id]
		if !inSubquery[id] || !inJoin[id] || resolvedA != resolvedB || a != b {
			divergent = append(divergent, id)
		}
	}
	slices.Sort(divergent)

	if len(divergent) > 0 {
		logging.FromContext(ctx).Warn("eager load strategies diverged",
			slog.Int("planets", len(divergent)),
		)
	}
	return &Comparison{Subquery: subquery, Join: join, Divergent: divergent}, nil
}

func planetIDs(r *Result) map[int64]bool {
	ids := make(map[int64]bool, len(r.Planets))
	for _, planet := range r.Planets {
		if id, ok := planet.PrimaryKey(); ok {
			ids[id] = true
		}
	}
	return ids
}

func unionKeys(a, b map[int64]bool) map[int64]struct{} {
	union := make(map[int64]struct{}, len(a)+len(b))
	for id := range a {
		union[id] = struct{}{}
	}
	for id := range b {
		union[id] = struct{}{}
	}
	return union
}
