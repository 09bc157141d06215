// Package app wires configuration, telemetry and the database into the
// relationship loader and owns their lifecycle for the CLI.
package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"tidb-orm/internal/benchmark"
	"tidb-orm/internal/config"
	"tidb-orm/internal/logging"
	"tidb-orm/internal/observability"
	"tidb-orm/internal/orm"
)

// App owns runtime resources for one relload invocation.
type App struct {
	cfg    *config.Config
	logger *logging.Logger

	loggerProvider *observability.LoggerProvider

	effectiveDatabase string
	dsnPresent        bool
	method            orm.EagerLoadMethod

	meterProvider  *observability.MeterProvider
	tracerProvider *observability.TracerProvider
	metrics        *observability.EagerLoadMetrics

	db         *sql.DB
	dbStatsReg interface{ Unregister() error }
	runner     *benchmark.Runner

	metricsSrv *http.Server

	cleanup cleanupStack

	stateMu     sync.Mutex
	initialized bool

	shutdownOnce sync.Once
}

// New creates an App lifecycle wrapper.
func New(cfg *config.Config, logger *logging.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	method, err := orm.ParseEagerLoadMethod(cfg.EagerLoad.Method)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:               cfg,
		logger:            logger,
		effectiveDatabase: cfg.Database.EffectiveDatabaseName(),
		dsnPresent:        strings.TrimSpace(cfg.Database.ConnectionString) != "",
		method:            method,
	}, nil
}

// AttachLoggerProvider registers an optional logger provider for shutdown cleanup.
func (a *App) AttachLoggerProvider(provider *observability.LoggerProvider) {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	a.loggerProvider = provider
}
