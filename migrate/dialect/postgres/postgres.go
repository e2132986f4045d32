// Package postgres provides the PostgreSQL migration dialect.
package postgres

import (
	"fmt"
	"net/url"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/lib/pq"

	"go.hackfix.me/strata/migrate"
)

// Dialect implements migrate.Dialect for PostgreSQL.
type Dialect struct{}

var _ migrate.Dialect = (*Dialect)(nil)

// New creates the PostgreSQL dialect.
func New() *Dialect {
	return &Dialect{}
}

// Name identifies the dialect in configuration.
func (d *Dialect) Name() string {
	return "postgres"
}

// Driver returns the database/sql driver name.
func (d *Dialect) Driver() string {
	return "postgres"
}

// CreateTableSQL returns idempotent DDL for the bookkeeping table.
func (d *Dialect) CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id CHAR(%d) PRIMARY KEY)`,
		table, migrate.IDLength)
}

// Placeholder renders the placeholder for the n-th (1-based) query argument.
func (d *Dialect) Placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// Config holds the parameters used to build a PostgreSQL connection string
// for an owned connection.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN builds a postgres:// connection string from the configured parameters.
// Host, User and Database are required; Port defaults to 5432 and SSLMode to
// disable.
func (c Config) DSN() (string, error) {
	if c.Host == "" || c.User == "" || c.Database == "" {
		return "", fmt.Errorf("postgres connection requires host, user and database")
	}

	port := c.Port
	if port == "" {
		port = "5432"
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(c.User),
		Host:     fmt.Sprintf("%s:%s", c.Host, port),
		Path:     c.Database,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}

	return u.String(), nil
}
