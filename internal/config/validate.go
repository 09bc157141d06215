package config

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"

	"tidb-orm/internal/naming"
)

// ValidationError represents a configuration validation error with context.
type ValidationError struct {
	Field   string
	Message string
	Hint    string
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (hint: %s)", e.Field, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
	Hint    string
}

// ValidationResult contains the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns a combined error message if there are validation errors.
func (r *ValidationResult) Error() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors and returns validation results.
// It returns both errors (fatal) and warnings (non-fatal issues).
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{}

	c.Database.validate(result)
	c.EagerLoad.validate(result, c.Database.Pool)
	c.Query.validate(result)
	c.Seed.validate(result)
	c.Observability.validate(result)
	validateNamingConfig(result, c.Naming)

	return result
}

func (d *DatabaseConfig) validate(result *ValidationResult) {
	if d.ConnectionString != "" {
		if _, err := mysql.ParseDSN(d.ConnectionString); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Field:   "database.dsn",
				Message: fmt.Sprintf("invalid DSN: %v", err),
				Hint:    "use user:password@tcp(host:port)/database",
			})
		}
	} else if d.Port < 1 || d.Port > 65535 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.port",
			Message: fmt.Sprintf("port %d is out of valid range (1-65535)", d.Port),
		})
	}

	if strings.TrimSpace(d.EffectiveDatabaseName()) == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
			Hint:    "set database.database or include it in database.dsn",
		})
	}

	validTLSModes := map[string]bool{"": true, "off": true, "skip-verify": true, "verify-full": true, "true": true, "preferred": true}
	if !validTLSModes[strings.ToLower(d.TLS.Mode)] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.tls.mode",
			Message: fmt.Sprintf("invalid TLS mode %q", d.TLS.Mode),
			Hint:    "valid values are: off, skip-verify, verify-full, preferred",
		})
	}
	if strings.EqualFold(d.TLS.Mode, "skip-verify") {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.tls.mode",
			Message: "TLS certificate verification is disabled",
			Hint:    "use verify-full outside development",
		})
	}

	if d.ConnectionTimeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.connection_timeout",
			Message: "connection_timeout cannot be negative",
		})
	}
	if d.ConnectionTimeout > 0 && d.ConnectionRetryInterval <= 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.connection_retry_interval",
			Message: "connection_retry_interval must be positive when connection_timeout is set",
		})
	}

	if d.Pool.MaxOpen < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.pool.max_open",
			Message: "max_open cannot be negative",
		})
	}
	if d.Pool.MaxIdle < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "database.pool.max_idle",
			Message: "max_idle cannot be negative",
		})
	}
	if d.Pool.MaxOpen > 0 && d.Pool.MaxIdle > d.Pool.MaxOpen {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "database.pool.max_idle",
			Message: fmt.Sprintf("max_idle (%d) exceeds max_open (%d)", d.Pool.MaxIdle, d.Pool.MaxOpen),
			Hint:    "idle connections are capped at max_open",
		})
	}
}

func (e *EagerLoadConfig) validate(result *ValidationResult, pool PoolConfig) {
	switch strings.ToLower(strings.TrimSpace(e.Method)) {
	case "subquery", "join":
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field:   "eager_load.method",
			Message: fmt.Sprintf("invalid eager load method %q", e.Method),
			Hint:    "valid values are: subquery, join",
		})
	}

	if e.MaxInClause < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "eager_load.max_in_clause",
			Message: "max_in_clause cannot be negative",
			Hint:    "use 0 for a single IN query",
		})
	}

	if e.Concurrency < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "eager_load.concurrency",
			Message: fmt.Sprintf("concurrency must be at least 1, got %d", e.Concurrency),
		})
	} else if pool.MaxOpen > 0 && e.Concurrency >= pool.MaxOpen {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "eager_load.concurrency",
			Message: fmt.Sprintf("concurrency (%d) leaves no spare connections in a pool of %d", e.Concurrency, pool.MaxOpen),
			Hint:    "raise database.pool.max_open or lower eager_load.concurrency",
		})
	}
}

func (q *QueryConfig) validate(result *ValidationResult) {
	if q.Limit < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "query.limit",
			Message: "limit cannot be negative",
		})
	}
	if q.Timeout < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "query.timeout",
			Message: "timeout cannot be negative",
		})
	}
}

func (s *SeedConfig) validate(result *ValidationResult) {
	if !s.Enabled {
		return
	}
	if s.Galaxies < 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "seed.galaxies",
			Message: "seeding needs at least one galaxy",
		})
	}
	if s.PlanetsPerGalaxy < 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "seed.planets_per_galaxy",
			Message: "planets_per_galaxy cannot be negative",
		})
	}
}

func validateNamingConfig(result *ValidationResult, cfg naming.Config) {
	check := func(field string, overrides map[string]string) {
		keys := make([]string, 0, len(overrides))
		for key := range overrides {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if strings.TrimSpace(key) == "" || strings.TrimSpace(overrides[key]) == "" {
				result.Errors = append(result.Errors, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("override %q -> %q has an empty side", key, overrides[key]),
				})
			}
		}
	}
	check("naming.plural_overrides", cfg.PluralOverrides)
}

func (o *ObservabilityConfig) validate(result *ValidationResult) {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[o.Logging.Level] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.level",
			Message: fmt.Sprintf("invalid log level %q", o.Logging.Level),
			Hint:    "valid values are: debug, info, warn, error",
		})
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[o.Logging.Format] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.logging.format",
			Message: fmt.Sprintf("invalid log format %q", o.Logging.Format),
			Hint:    "valid values are: json, text",
		})
	}

	if o.TraceSampleRatio < 0 || o.TraceSampleRatio > 1 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "observability.trace_sample_ratio",
			Message: fmt.Sprintf("trace_sample_ratio %v is outside [0, 1]", o.TraceSampleRatio),
		})
	}

	if o.MetricsAddr != "" && !o.MetricsEnabled {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "observability.metrics_addr",
			Message: "metrics_addr is set but metrics are disabled",
			Hint:    "set observability.metrics_enabled=true",
		})
	}

	o.OTLP.validate("observability.otlp", result)
	if o.Traces != nil {
		o.Traces.validate("observability.traces", result)
	}
	if o.Logs != nil {
		o.Logs.validate("observability.logs", result)
	}
}

func (o *OTLPConfig) validate(prefix string, result *ValidationResult) {
	validProtocols := map[string]bool{"": true, "grpc": true, "http/protobuf": true}
	if !validProtocols[o.Protocol] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".protocol",
			Message: fmt.Sprintf("invalid OTLP protocol %q", o.Protocol),
			Hint:    "valid values are: grpc, http/protobuf",
		})
	}

	if o.Protocol == "http/protobuf" && !validOTLPEndpoint(o.Endpoint) {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".endpoint",
			Message: fmt.Sprintf("invalid OTLP endpoint %q for http/protobuf", o.Endpoint),
			Hint:    "use host:port or a full URL",
		})
	}

	validCompressions := map[string]bool{"": true, "none": true, "gzip": true}
	if !validCompressions[o.Compression] {
		result.Errors = append(result.Errors, ValidationError{
			Field:   prefix + ".compression",
			Message: fmt.Sprintf("invalid OTLP compression %q", o.Compression),
			Hint:    "valid values are: none, gzip",
		})
	}
}

func validOTLPEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	if strings.Contains(endpoint, "://") {
		parsed, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return parsed.Host != ""
	}
	_, _, err := net.SplitHostPort(endpoint)
	return err == nil
}
