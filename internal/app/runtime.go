package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"tidb-orm/internal/benchmark"
	"tidb-orm/internal/logging"
	"tidb-orm/internal/orm"
)

// comparisonReport is the printed form of a two-strategy run.
type comparisonReport struct {
	Subquery  *benchmark.Report `json:"subquery"`
	Join      *benchmark.Report `json:"join"`
	Divergent []int64           `json:"divergent"`
}

// Run seeds when configured, loads planets with their galaxies and writes
// the JSON result to out. It requires Init to have completed.
func (a *App) Run(ctx context.Context, out io.Writer) error {
	a.stateMu.Lock()
	initialized, runner := a.initialized, a.runner
	a.stateMu.Unlock()
	if !initialized {
		return fmt.Errorf("app is not initialized")
	}

	queryID := uuid.NewString()
	ctx = logging.WithQueryIDContext(ctx, queryID)
	ctx = logging.WithLogger(ctx, a.logger.WithQueryID(queryID))
	if a.cfg.Query.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Query.Timeout)
		defer cancel()
	}

	if a.cfg.Seed.Enabled {
		if err := seed(ctx, a.cfg.Seed.Galaxies, a.cfg.Seed.PlanetsPerGalaxy, runner, a.logger); err != nil {
			return err
		}
	}

	var payload any
	if a.cfg.Query.Compare {
		comparison, err := runner.Compare(ctx, a.cfg.Query.Limit)
		if err != nil {
			return err
		}
		report := comparisonReport{Divergent: comparison.Divergent}
		if report.Subquery, err = comparison.Subquery.Report(); err != nil {
			return err
		}
		if report.Join, err = comparison.Join.Report(); err != nil {
			return err
		}
		if report.Divergent == nil {
			report.Divergent = []int64{}
		}
		payload = report
	} else {
		result, err := runner.Run(ctx, a.method, a.cfg.Query.Limit)
		if err != nil {
			return err
		}
		report, err := result.Report()
		if err != nil {
			return err
		}
		payload = report
	}

	enc := gojson.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func seed(ctx context.Context, galaxies, planetsPerGalaxy int, runner *benchmark.Runner, logger *logging.Logger) error {
	db := runner.Database()
	if err := benchmark.EnsureTables(ctx, db.Executor()); err != nil {
		return err
	}
	if err := benchmark.Seed(ctx, db, galaxies, planetsPerGalaxy); err != nil {
		return fmt.Errorf("failed to seed sample data: %w", err)
	}
	logger.Info("seeded sample data",
		slog.Int("galaxies", galaxies),
		slog.Int("planets", galaxies*planetsPerGalaxy),
	)
	return nil
}

// Method returns the eager load strategy single runs use.
func (a *App) Method() orm.EagerLoadMethod {
	return a.method
}
