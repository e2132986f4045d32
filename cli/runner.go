package cli

import (
	"log/slog"
	"os"

	actx "go.hackfix.me/strata/app/context"
	aerrors "go.hackfix.me/strata/app/errors"
	"go.hackfix.me/strata/migrate"
	"go.hackfix.me/strata/migrate/dialect/postgres"
	"go.hackfix.me/strata/migrate/dialect/sqlite"
)

// runner bundles the objects a migration command works with.
type runner struct {
	migrator *migrate.Migrator
	target   *migrate.Target
	source   *migrate.Source
}

// newRunner assembles the migration target, source and migrator from the
// application context. If the caller supplied a database connection, the
// target operates on it as a shared connection; otherwise it lazily opens an
// owned connection from the resolved DSN.
func newRunner(appCtx *actx.Context) (*runner, error) {
	cfg := appCtx.Config

	dialect, err := newDialect(cfg.Database.Dialect)
	if err != nil {
		return nil, err
	}

	var conn migrate.Conn
	if appCtx.DB != nil {
		conn = migrate.SharedConn{DB: appCtx.DB}
	} else {
		dsn, err := resolveDSN(appCtx, dialect)
		if err != nil {
			return nil, err
		}
		conn = migrate.OwnedConn{DSN: dsn}
	}

	target := migrate.NewTarget(dialect, conn,
		migrate.WithTable(cfg.Migrations.Table),
		migrate.WithLogger(appCtx.Logger),
	)

	source, err := migrate.LoadSource(os.DirFS(cfg.Migrations.Dir))
	if err != nil {
		return nil, aerrors.WithCause(err, nil, "dir", cfg.Migrations.Dir)
	}

	return &runner{
		migrator: migrate.NewMigrator(target, source, appCtx.Logger),
		target:   target,
		source:   source,
	}, nil
}

// close shuts the target down, closing its connection if it owns one.
func (r *runner) close() {
	if err := r.target.Shutdown(); err != nil {
		slog.Warn("failed shutting down migration target", "error", err)
	}
}

func newDialect(name string) (migrate.Dialect, error) {
	switch name {
	case "postgres":
		return postgres.New(), nil
	case "sqlite":
		return sqlite.New(), nil
	}
	return nil, aerrors.NewWithCause("unsupported database dialect", nil, "dialect", name)
}

// resolveDSN determines the connection string for an owned connection: an
// explicitly configured DSN wins; otherwise, for Postgres, one is built from
// the discrete configuration values, falling back to the conventional
// POSTGRES_* environment variables.
func resolveDSN(appCtx *actx.Context, dialect migrate.Dialect) (string, error) {
	db := appCtx.Config.Database
	if db.DSN != "" {
		return db.DSN, nil
	}

	if dialect.Name() != "postgres" {
		return "", aerrors.NewWithCause("a database DSN is required", nil, "dialect", dialect.Name())
	}

	env := func(string) string { return "" }
	if appCtx.Env != nil {
		env = appCtx.Env.Get
	}
	pgcfg := postgres.Config{
		Host:     fallback(db.Host, env("POSTGRES_HOST")),
		Port:     fallback(db.Port, env("POSTGRES_PORT")),
		User:     fallback(db.User, env("POSTGRES_USER")),
		Password: fallback(db.Password, env("POSTGRES_PASSWORD")),
		Database: fallback(db.Name, env("POSTGRES_DB")),
		SSLMode:  db.SSLMode,
	}

	dsn, err := pgcfg.DSN()
	if err != nil {
		return "", aerrors.WithCause(err, nil,
			"hint", "set a DSN or host/user/database in the configuration file, or POSTGRES_* environment variables")
	}

	return dsn, nil
}

func fallback(value, alt string) string {
	if value != "" {
		return value
	}
	return alt
}
