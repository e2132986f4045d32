package app

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/mandelsoft/vfs/pkg/memoryfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMigrations creates a migrations directory on the real filesystem with
// two migration pairs.
func writeMigrations(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"20240101120000-create_users.up.sql":   `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL);`,
		"20240101120000-create_users.down.sql": `DROP TABLE users;`,
		"20240102120000-add_email.up.sql":      `ALTER TABLE users ADD COLUMN email TEXT;`,
		"20240102120000-add_email.down.sql":    `ALTER TABLE users DROP COLUMN email;`,
	}
	for name, contents := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644)
		require.NoError(t, err)
	}

	return dir
}

func TestAppUpDownStatus(t *testing.T) {
	t.Parallel()

	dir := writeMigrations(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "strata.db")
	flags := []string{"--dialect=sqlite", "--dsn=" + dsn, "--dir=" + dir}

	ta := newTestApp(t)

	err := ta.Run(append([]string{"up"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "Applied migration 20240101120000")
	assert.Contains(t, ta.stdout.String(), "Applied migration 20240102120000")

	// A second run has nothing to do.
	err = ta.Run(append([]string{"up"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "No pending migrations.")

	err = ta.Run(append([]string{"status"}, flags...)...)
	require.NoError(t, err)
	out := ta.stdout.String()
	assert.Contains(t, out, "create_users")
	assert.Contains(t, out, "add_email")
	assert.Contains(t, out, "applied")
	assert.NotContains(t, out, "pending")

	err = ta.Run(append([]string{"down"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "Reverted migration 20240102120000")
	assert.NotContains(t, ta.stdout.String(), "20240101120000")

	err = ta.Run(append([]string{"status"}, flags...)...)
	require.NoError(t, err)
	out = ta.stdout.String()
	assert.Contains(t, out, "applied")
	assert.Contains(t, out, "pending")

	// Reverting more steps than are applied reverts everything.
	err = ta.Run(append([]string{"down", "--steps=10"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "Reverted migration 20240101120000")

	err = ta.Run(append([]string{"down"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "No applied migrations.")
}

func TestAppSharedDB(t *testing.T) {
	t.Parallel()

	rnd := make([]byte, 12)
	_, err := rand.Read(rnd)
	require.NoError(t, err)

	// Not using just :memory: to avoid 'no such table' issue.
	// See https://github.com/mattn/go-sqlite3#faq
	db, err := sql.Open("sqlite", fmt.Sprintf("file:strata-%x?mode=memory&cache=shared", rnd))
	require.NoError(t, err)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Duration(math.Inf(1)))
	t.Cleanup(func() { _ = db.Close() })

	dir := writeMigrations(t)
	flags := []string{"--dialect=sqlite", "--dir=" + dir}

	ta := newTestApp(t, WithDB(db))

	err = ta.Run(append([]string{"up"}, flags...)...)
	require.NoError(t, err)

	// The migrations ran on the provided connection.
	var n int
	err = db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	require.NoError(t, err)
	assert.Zero(t, n)

	// The connection remains open and usable after the command shut down.
	err = ta.Run(append([]string{"down", "--steps=2"}, flags...)...)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	err = db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	assert.Error(t, err)
}

func TestAppConfigFile(t *testing.T) {
	t.Parallel()

	dir := writeMigrations(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "strata.db")

	fs := memoryfs.New()
	cfgJSON := fmt.Sprintf(`{
		"Database": {"Dialect": "sqlite", "DSN": %q},
		"Migrations": {"Dir": %q}
	}`, dsn, dir)
	err := vfs.WriteFile(fs, "/config.json", []byte(cfgJSON), 0o644)
	require.NoError(t, err)

	ta := newTestApp(t, WithFS(fs))

	err = ta.Run("up")
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "Applied migration 20240102120000")

	// CLI flags override file values.
	err = ta.Run("down", "--table=_migrations")
	require.NoError(t, err)
	assert.Contains(t, ta.stdout.String(), "Reverted migration 20240102120000")
}

func TestAppErrors(t *testing.T) {
	t.Parallel()

	dir := writeMigrations(t)
	dsn := "file:" + filepath.Join(t.TempDir(), "strata.db")

	tests := []struct {
		name   string
		args   []string
		expErr string
	}{
		{
			name:   "err/unsupported_dialect",
			args:   []string{"up", "--dialect=mysql", "--dsn=" + dsn, "--dir=" + dir},
			expErr: "unsupported database dialect",
		},
		{
			name:   "err/sqlite_without_dsn",
			args:   []string{"up", "--dialect=sqlite", "--dir=" + dir},
			expErr: "a database DSN is required",
		},
		{
			name:   "err/postgres_without_connection_params",
			args:   []string{"up", "--dir=" + dir},
			expErr: "postgres connection requires host, user and database",
		},
		{
			name:   "err/invalid_steps",
			args:   []string{"down", "--steps=0", "--dialect=sqlite", "--dsn=" + dsn, "--dir=" + dir},
			expErr: "steps must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ta := newTestApp(t)
			err := ta.Run(tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expErr)
		})
	}
}
