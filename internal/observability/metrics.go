package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EagerLoadMetrics holds instruments describing relationship eager loading.
// A nil *EagerLoadMetrics is valid and records nothing.
type EagerLoadMetrics struct {
	requests     metric.Int64Counter
	failures     metric.Int64Counter
	queries      metric.Int64Counter
	keys         metric.Int64Histogram
	resolved     metric.Int64Histogram
	queriesSaved metric.Int64Counter
}

// InitEagerLoadMetrics creates the instruments on the global meter provider.
func InitEagerLoadMetrics() (*EagerLoadMetrics, error) {
	return NewEagerLoadMetrics(otel.Meter("tidb-orm"))
}

// NewEagerLoadMetrics creates the instruments on the given meter.
func NewEagerLoadMetrics(meter metric.Meter) (*EagerLoadMetrics, error) {
	requests, err := meter.Int64Counter(
		"orm.eager_load.requests",
		metric.WithDescription("Number of eager load requests run"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create eager load requests counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"orm.eager_load.failures",
		metric.WithDescription("Number of eager load requests that failed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create eager load failures counter: %w", err)
	}

	queries, err := meter.Int64Counter(
		"orm.eager_load.queries",
		metric.WithDescription("Number of secondary queries issued by eager loads"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create eager load queries counter: %w", err)
	}

	keys, err := meter.Int64Histogram(
		"orm.eager_load.keys",
		metric.WithDescription("Number of distinct foreign keys resolved by one eager load"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create eager load keys histogram: %w", err)
	}

	resolved, err := meter.Int64Histogram(
		"orm.eager_load.resolved",
		metric.WithDescription("Number of referenced entities made available by one eager load"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create eager load resolved histogram: %w", err)
	}

	queriesSaved, err := meter.Int64Counter(
		"orm.eager_load.queries_saved",
		metric.WithDescription("Number of per-row queries avoided by eager loading"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create eager load queries saved counter: %w", err)
	}

	return &EagerLoadMetrics{
		requests:     requests,
		failures:     failures,
		queries:      queries,
		keys:         keys,
		resolved:     resolved,
		queriesSaved: queriesSaved,
	}, nil
}

// RecordRequest records one completed eager load run.
func (m *EagerLoadMetrics) RecordRequest(ctx context.Context, method, entity string, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("entity", entity),
	)
	m.requests.Add(ctx, 1, attrs)
	if err != nil {
		m.failures.Add(ctx, 1, attrs)
	}
}

// RecordSubquery records a subquery eager load: the distinct keys it looked
// up, the secondary queries it issued and the owning rows it served.
func (m *EagerLoadMetrics) RecordSubquery(ctx context.Context, entity string, keys, queries, rows int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", "subquery"),
		attribute.String("entity", entity),
	)
	m.keys.Record(ctx, int64(keys), attrs)
	if queries > 0 {
		m.queries.Add(ctx, int64(queries), attrs)
	}
	m.recordSaved(ctx, rows-queries, attrs)
}

// RecordJoin records a join eager load that served rows owning rows without
// any secondary query.
func (m *EagerLoadMetrics) RecordJoin(ctx context.Context, entity string, rows int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", "join"),
		attribute.String("entity", entity),
	)
	m.recordSaved(ctx, rows, attrs)
}

// RecordResolved records how many referenced entities a request made available.
func (m *EagerLoadMetrics) RecordResolved(ctx context.Context, method, entity string, count int) {
	if m == nil {
		return
	}
	m.resolved.Record(ctx, int64(count), metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("entity", entity),
	))
}

func (m *EagerLoadMetrics) recordSaved(ctx context.Context, count int, attrs metric.MeasurementOption) {
	if count <= 0 {
		return
	}
	m.queriesSaved.Add(ctx, int64(count), attrs)
}

// InitMetrics initializes all custom metrics and logs the outcome.
func InitMetrics(logger *slog.Logger) (*EagerLoadMetrics, error) {
	metrics, err := InitEagerLoadMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize eager load metrics: %w", err)
	}

	logger.Info("eager load metrics initialized")
	return metrics, nil
}
