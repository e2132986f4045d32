package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultTable is the name of the bookkeeping table. The leading underscore
// marks it as internal, so it's excluded from user-facing schema listings.
const DefaultTable = "_migrations"

// Target executes migration bookkeeping operations against exactly one
// logical database connection, chosen lazily according to its Conn variant.
//
// A target is either disconnected or connected. It connects on the first
// operation that needs a connection: unconditionally for SharedConn, and by
// opening and pinging the DSN for OwnedConn. When an operation fails on an
// owned connection, the target closes it and resets to disconnected before
// returning the error, so a subsequent call can retry cleanly. Shared
// connections are never closed or reset by the target; their lifecycle
// belongs to the caller.
//
// All operations are serialized by the target's mutex, so concurrent calls
// can't race to open two owned connections or double-close one. The mutex is
// held for the full operation, including database I/O.
type Target struct {
	dialect  Dialect
	provider Conn
	table    string
	logger   *slog.Logger

	mx    sync.Mutex
	db    *sql.DB // nil while disconnected
	owned bool
}

// TargetOption is a function that allows configuring the target.
type TargetOption func(*Target)

// WithTable overrides the name of the bookkeeping table.
func WithTable(table string) TargetOption {
	return func(t *Target) {
		t.table = table
	}
}

// WithLogger sets the logger used by the target.
func WithLogger(logger *slog.Logger) TargetOption {
	return func(t *Target) {
		t.logger = logger
	}
}

// NewTarget creates a migration target for the given dialect and connection
// variant. No connection is made until the first operation that needs one.
func NewTarget(dialect Dialect, provider Conn, opts ...TargetOption) *Target {
	t := &Target{
		dialect:  dialect,
		provider: provider,
		table:    DefaultTable,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// EnsureTable creates the bookkeeping table if it doesn't exist. It is
// idempotent and safe to call on every run.
func (t *Target) EnsureTable(ctx context.Context) error {
	t.mx.Lock()
	defer t.mx.Unlock()

	db, err := t.connect(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, t.dialect.CreateTableSQL(t.table)); err != nil {
		return t.fail(&QueryError{Op: "create bookkeeping table", Err: err})
	}

	return nil
}

// HighestApplied returns the greatest migration ID recorded in the
// bookkeeping table. ok is false if no migration has been applied. A stored
// ID that fails to parse is reported as a *CorruptStateError.
func (t *Target) HighestApplied(ctx context.Context) (id ID, ok bool, err error) {
	t.mx.Lock()
	defer t.mx.Unlock()

	db, err := t.connect(ctx)
	if err != nil {
		return "", false, err
	}

	// Row insertion order isn't guaranteed to match ID order, so the highest
	// applied ID must be selected with an explicit descending sort.
	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY id DESC LIMIT 1`, t.table)
	var raw string
	err = db.QueryRowContext(ctx, query).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, t.fail(&QueryError{Op: "read highest applied ID", Err: err})
	}

	id, perr := ParseID(raw)
	if perr != nil {
		return "", false, t.fail(&CorruptStateError{Raw: raw, Err: perr})
	}

	return id, true, nil
}

// Applied returns all migration IDs recorded in the bookkeeping table, in
// ascending order.
func (t *Target) Applied(ctx context.Context) ([]ID, error) {
	t.mx.Lock()
	defer t.mx.Unlock()

	db, err := t.connect(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT id FROM %s ORDER BY id ASC`, t.table)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, t.fail(&QueryError{Op: "read applied IDs", Err: err})
	}
	defer rows.Close()

	var ids []ID
	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, t.fail(&QueryError{Op: "scan applied ID", Err: err})
		}
		id, perr := ParseID(raw)
		if perr != nil {
			return nil, t.fail(&CorruptStateError{Raw: raw, Err: perr})
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, t.fail(&QueryError{Op: "read applied IDs", Err: err})
	}

	return ids, nil
}

// Apply executes a migration's forward SQL and records its ID in the
// bookkeeping table, both within a single transaction. On any failure the
// transaction is rolled back in full and the error surfaces to the caller;
// observers never see the SQL applied without the ID recorded, or vice versa.
// Applying an already-recorded ID fails on the table's primary key and is
// surfaced as a *QueryError, never silently ignored.
func (t *Target) Apply(ctx context.Context, id ID, upSQL string) error {
	t.mx.Lock()
	defer t.mx.Unlock()

	db, err := t.connect(ctx)
	if err != nil {
		return err
	}

	err = t.inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, upSQL); err != nil {
			return &QueryError{ID: id, Op: "execute migration", Err: err}
		}

		insert := fmt.Sprintf(`INSERT INTO %s (id) VALUES (%s)`,
			t.table, t.dialect.Placeholder(1))
		if _, err := tx.ExecContext(ctx, insert, id.String()); err != nil {
			return &QueryError{ID: id, Op: "record migration", Err: err}
		}

		return nil
	})
	if err != nil {
		return t.fail(err)
	}

	t.logger.Debug("applied migration", "id", id)

	return nil
}

// Revert executes a migration's rollback SQL and deletes its ID from the
// bookkeeping table, both within a single transaction. It is symmetric to
// Apply: any failure rolls back both effects, success commits both atomically.
func (t *Target) Revert(ctx context.Context, id ID, downSQL string) error {
	t.mx.Lock()
	defer t.mx.Unlock()

	db, err := t.connect(ctx)
	if err != nil {
		return err
	}

	err = t.inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, downSQL); err != nil {
			return &QueryError{ID: id, Op: "execute rollback", Err: err}
		}

		del := fmt.Sprintf(`DELETE FROM %s WHERE id = %s`,
			t.table, t.dialect.Placeholder(1))
		if _, err := tx.ExecContext(ctx, del, id.String()); err != nil {
			return &QueryError{ID: id, Op: "delete migration record", Err: err}
		}

		return nil
	})
	if err != nil {
		return t.fail(err)
	}

	t.logger.Debug("reverted migration", "id", id)

	return nil
}

// Shutdown closes the connection if the target owns one, and resets it to
// the disconnected state. It is a no-op for shared connections and for
// targets that never connected, and is safe to call at any time.
func (t *Target) Shutdown() error {
	t.mx.Lock()
	defer t.mx.Unlock()

	if !t.owned || t.db == nil {
		return nil
	}

	err := t.db.Close()
	t.db = nil
	t.owned = false
	if err != nil {
		return &ConnectionError{Op: "close", Err: err}
	}

	t.logger.Debug("closed owned database connection")

	return nil
}

// connect returns the active connection, establishing it first if the target
// is disconnected. Callers must hold t.mx.
func (t *Target) connect(ctx context.Context) (*sql.DB, error) {
	if t.db != nil {
		return t.db, nil
	}

	switch c := t.provider.(type) {
	case SharedConn:
		t.db = c.DB
	case OwnedConn:
		db, err := sql.Open(t.dialect.Driver(), c.DSN)
		if err != nil {
			return nil, &ConnectionError{Op: "open", Err: err}
		}
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, &ConnectionError{Op: "connect", Err: err}
		}
		t.db = db
		t.owned = true
		t.logger.Debug("opened owned database connection", "dialect", t.dialect.Name())
	default:
		return nil, &ConnectionError{Op: "connect", Err: fmt.Errorf("unknown connection variant %T", c)}
	}

	return t.db, nil
}

// fail closes the connection after a failed operation if the target owns it,
// resetting to the disconnected state, and returns err unchanged. Shared
// connections stay connected even after an operation error.
func (t *Target) fail(err error) error {
	if t.owned && t.db != nil {
		if cerr := t.db.Close(); cerr != nil {
			t.logger.Warn("failed closing owned connection after error", "error", cerr)
		}
		t.db = nil
		t.owned = false
	}

	return err
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on any error. The original error from fn is returned unchanged.
func (t *Target) inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return &ConnectionError{Op: "begin transaction", Err: err}
	}

	if err = fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			t.logger.Warn("failed rolling back transaction", "error", rerr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return &QueryError{Op: "commit transaction", Err: err}
	}

	return nil
}
