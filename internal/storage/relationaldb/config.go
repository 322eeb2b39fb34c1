package relationaldb

import (
	"fmt"
	"time"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains database configuration settings
type Config struct {
	// Driver is sqlite or postgres
	Driver string

	// DSN is a postgres connection string, or a sqlite file path.
	// An empty sqlite DSN keeps the database in memory.
	DSN string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// DefaultTimeout bounds connection checks
	DefaultTimeout time.Duration
}

// SQLiteConfig creates a SQLite configuration for path
func SQLiteConfig(path string) *Config {
	return &Config{
		Driver:         DriverSQLite,
		DSN:            path,
		MaxOpenConns:   1, // SQLite limitation
		MaxIdleConns:   1,
		DefaultTimeout: 5 * time.Second,
	}
}

// PostgresConfig creates a PostgreSQL configuration for dsn
func PostgresConfig(dsn string) *Config {
	return &Config{
		Driver:          DriverPostgres,
		DSN:             dsn,
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		DefaultTimeout:  10 * time.Second,
	}
}

// Validate checks the configuration for common errors
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
	case DriverPostgres, "postgresql":
		c.Driver = DriverPostgres
		if c.DSN == "" {
			return ErrMissingDSN
		}
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDriver, c.Driver)
	}
	if c.MaxOpenConns < 0 {
		return ErrInvalidMaxOpenConns
	}
	if c.DefaultTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}

// dataSource returns the driver-specific connection string
func (c *Config) dataSource() string {
	if c.Driver == DriverSQLite && c.DSN == "" {
		return ":memory:"
	}
	return c.DSN
}
