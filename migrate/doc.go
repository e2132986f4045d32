// Package migrate executes relational database schema migrations.
//
// Features:
// - Applies forward (`up`) and rollback (`down`) migrations transactionally,
//   recording each applied migration ID in a single bookkeeping table
// - Loads SQL migration files from any fs.FS (including embedded filesystems)
//   with structured naming (`{id}-{name}.{up|down}.sql`)
// - Operates over a caller-owned shared connection, or lazily opens and owns
//   its own connection from a DSN
// - Guarantees all-or-nothing application: the migration SQL and the
//   bookkeeping record commit in the same transaction, and the bookkeeping
//   primary key rejects duplicate application
package migrate
