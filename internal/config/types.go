// Package config loads configuration from files, env vars, and flags, and validates it.
package config

import (
	"time"

	"tidb-orm/internal/naming"
)

// Config holds the application configuration.
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	EagerLoad     EagerLoadConfig     `mapstructure:"eager_load"`
	Query         QueryConfig         `mapstructure:"query"`
	Seed          SeedConfig          `mapstructure:"seed"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Naming        naming.Config       `mapstructure:"naming"`
}

// DatabaseConfig holds database connection parameters.
type DatabaseConfig struct {
	ConnectionString string            `mapstructure:"dsn"`
	Host             string            `mapstructure:"host"`
	Port             int               `mapstructure:"port"`
	User             string            `mapstructure:"user"`
	Password         string            `mapstructure:"password"`
	PasswordFile     string            `mapstructure:"password_file"`
	PasswordPrompt   bool              `mapstructure:"password_prompt"`
	Database         string            `mapstructure:"database"`
	TLS              DatabaseTLSConfig `mapstructure:"tls"`
	Pool             PoolConfig        `mapstructure:"pool"`

	// ConnectionTimeout bounds the startup wait for the database; 0 tries once.
	ConnectionTimeout       time.Duration `mapstructure:"connection_timeout"`
	ConnectionRetryInterval time.Duration `mapstructure:"connection_retry_interval"`
}

// DatabaseTLSConfig selects the MySQL driver TLS mode.
type DatabaseTLSConfig struct {
	Mode string `mapstructure:"mode"` // off, skip-verify, verify-full, preferred
}

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open"`
	MaxIdle     int           `mapstructure:"max_idle"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime"`
}

// EagerLoadConfig controls how relationships are resolved.
type EagerLoadConfig struct {
	Method      string `mapstructure:"method"`        // subquery, join
	MaxInClause int    `mapstructure:"max_in_clause"` // 0 = one IN query regardless of key count
	Concurrency int    `mapstructure:"concurrency"`   // eager loads run at once per query
}

// QueryConfig describes the sample query the CLI runs.
type QueryConfig struct {
	Limit   int           `mapstructure:"limit"`
	Timeout time.Duration `mapstructure:"timeout"`
	Compare bool          `mapstructure:"compare"` // run both strategies and report divergence
}

// SeedConfig controls creating and filling the sample tables before the query.
type SeedConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	Galaxies         int  `mapstructure:"galaxies"`
	PlanetsPerGalaxy int  `mapstructure:"planets_per_galaxy"`
}

// LoggingConfig holds logging parameters.
type LoggingConfig struct {
	Level          string `mapstructure:"level"`           // debug, info, warn, error
	Format         string `mapstructure:"format"`          // json, text
	ExportsEnabled bool   `mapstructure:"exports_enabled"` // Enable OTLP log export
}

// ObservabilityConfig holds observability parameters.
type ObservabilityConfig struct {
	ServiceName      string        `mapstructure:"service_name"`
	ServiceVersion   string        `mapstructure:"service_version"`
	Environment      string        `mapstructure:"environment"`
	MetricsEnabled   bool          `mapstructure:"metrics_enabled"`
	MetricsAddr      string        `mapstructure:"metrics_addr"`
	TracingEnabled   bool          `mapstructure:"tracing_enabled"`
	TraceSampleRatio float64       `mapstructure:"trace_sample_ratio"`
	Logging          LoggingConfig `mapstructure:"logging"`

	// Global OTLP settings (defaults for all signals)
	OTLP OTLPConfig `mapstructure:"otlp"`

	// Signal-specific overrides (optional)
	Traces *OTLPConfig `mapstructure:"traces,omitempty"`
	Logs   *OTLPConfig `mapstructure:"logs,omitempty"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Endpoint     string            `mapstructure:"endpoint"`
	Protocol     string            `mapstructure:"protocol"` // "grpc", "http/protobuf"
	Insecure     bool              `mapstructure:"insecure"`
	Headers      map[string]string `mapstructure:"headers"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	Compression  string            `mapstructure:"compression"` // "none", "gzip"
	RetryEnabled bool              `mapstructure:"retry_enabled"`
}

// GetTracesConfig returns the effective OTLP config for traces
func (c *ObservabilityConfig) GetTracesConfig() OTLPConfig {
	if c.Traces != nil {
		return mergeOTLPConfigs(c.OTLP, *c.Traces)
	}
	return c.OTLP
}

// GetLogsConfig returns the effective OTLP config for logs
func (c *ObservabilityConfig) GetLogsConfig() OTLPConfig {
	if c.Logs != nil {
		return mergeOTLPConfigs(c.OTLP, *c.Logs)
	}
	return c.OTLP
}

// mergeOTLPConfigs merges signal-specific config over global defaults
func mergeOTLPConfigs(base OTLPConfig, override OTLPConfig) OTLPConfig {
	result := base

	if override.Endpoint != "" {
		result.Endpoint = override.Endpoint
	}
	if override.Protocol != "" {
		result.Protocol = override.Protocol
	}
	// A present override block always decides Insecure; false is indistinguishable from unset.
	result.Insecure = override.Insecure

	if override.Headers != nil {
		result.Headers = make(map[string]string, len(base.Headers)+len(override.Headers))
		for k, v := range base.Headers {
			result.Headers[k] = v
		}
		for k, v := range override.Headers {
			result.Headers[k] = v
		}
	}
	if override.Timeout != 0 {
		result.Timeout = override.Timeout
	}
	if override.Compression != "" {
		result.Compression = override.Compression
	}
	return result
}
