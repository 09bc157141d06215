package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSN returns a MySQL-compatible data source name. An explicit connection
// string wins over the discrete fields; either way parseTime is enabled and
// the configured TLS mode is applied unless the DSN already names one.
func (d *DatabaseConfig) DSN() string {
	var cfg *mysql.Config
	if d.ConnectionString != "" {
		parsed, err := mysql.ParseDSN(d.ConnectionString)
		if err != nil {
			return d.ConnectionString
		}
		cfg = parsed
	} else {
		cfg = mysql.NewConfig()
		cfg.User = d.User
		cfg.Passwd = d.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
		cfg.DBName = d.Database
	}

	cfg.ParseTime = true
	if cfg.TLSConfig == "" {
		cfg.TLSConfig = d.TLS.driverParam()
	}
	return cfg.FormatDSN()
}

// driverParam maps the TLS mode onto the driver's tls parameter.
func (t DatabaseTLSConfig) driverParam() string {
	switch strings.ToLower(strings.TrimSpace(t.Mode)) {
	case "skip-verify":
		return "skip-verify"
	case "verify-full", "true":
		return "true"
	case "preferred":
		return "preferred"
	default:
		return ""
	}
}

// EffectiveDatabaseName returns the database the DSN targets.
func (d *DatabaseConfig) EffectiveDatabaseName() string {
	if d.ConnectionString != "" {
		if parsed, err := mysql.ParseDSN(d.ConnectionString); err == nil && parsed.DBName != "" {
			return parsed.DBName
		}
	}
	return d.Database
}

// Lifetime returns the pool lifetime, defaulting to five minutes.
func (p PoolConfig) Lifetime() time.Duration {
	if p.MaxLifetime <= 0 {
		return 5 * time.Minute
	}
	return p.MaxLifetime
}
