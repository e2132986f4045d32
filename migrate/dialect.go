package migrate

// Dialect carries the database-specific pieces the target needs: the
// registered database/sql driver to open owned connections with, the DDL for
// the bookkeeping table, and positional placeholder rendering. Implementations
// live in the migrate/dialect subpackages and blank-import their drivers.
type Dialect interface {
	// Name identifies the dialect in configuration.
	Name() string
	// Driver is the database/sql driver name owned connections are opened with.
	Driver() string
	// CreateTableSQL returns idempotent DDL for the bookkeeping table: a
	// single fixed-width text column named id, primary key.
	CreateTableSQL(table string) string
	// Placeholder renders the placeholder for the n-th (1-based) query argument.
	Placeholder(n int) string
}
