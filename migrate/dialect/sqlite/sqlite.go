// Package sqlite provides the SQLite migration dialect.
package sqlite

import (
	"fmt"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/strata/migrate"
)

// Dialect implements migrate.Dialect for SQLite.
type Dialect struct{}

var _ migrate.Dialect = (*Dialect)(nil)

// New creates the SQLite dialect.
func New() *Dialect {
	return &Dialect{}
}

// Name identifies the dialect in configuration.
func (d *Dialect) Name() string {
	return "sqlite"
}

// Driver returns the database/sql driver name.
func (d *Dialect) Driver() string {
	return "sqlite"
}

// CreateTableSQL returns idempotent DDL for the bookkeeping table. SQLite has
// no fixed-width character type, so the ID width is enforced with a CHECK
// constraint instead.
func (d *Dialect) CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY CHECK (length(id) = %d))`,
		table, migrate.IDLength)
}

// Placeholder renders the placeholder for the n-th (1-based) query argument.
func (d *Dialect) Placeholder(_ int) string {
	return "?"
}
