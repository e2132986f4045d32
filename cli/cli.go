package cli

import (
	"fmt"
	"log/slog"

	"github.com/alecthomas/kong"

	"go.hackfix.me/strata/app/config"
	actx "go.hackfix.me/strata/app/context"
	"go.hackfix.me/strata/migrate"
)

// CLI is the command line interface of Strata.
type CLI struct {
	Up     Up     `kong:"cmd,help='Apply all pending migrations.'"`
	Down   Down   `kong:"cmd,help='Revert the most recently applied migrations.'"`
	Status Status `kong:"cmd,help='Show applied and pending migrations.'"`

	Dir     string `kong:"help='Path to the directory with migration files.'"`
	Dialect string `kong:"help='Database dialect: postgres or sqlite.'"`
	DSN     string `kong:"help='Database connection string.'"`
	Table   string `kong:"help='Name of the bookkeeping table.'"`

	Log struct {
		Level slog.Level `enum:"DEBUG,INFO,WARN,ERROR" default:"INFO" help:"Set the app logging level."`
	} `embed:"" prefix:"log-"`
	// NOTE: I'm deliberately not using kong.ConfigFlag or its support for reading
	// values from configuration files, since I want to manage configuration
	// independently from the CLI.
	ConfigFile string           `kong:"default='${configFile}',help='Path to the Strata configuration file.'"`
	Version    kong.VersionFlag `kong:"help='Output version and exit.'"`

	kong *kong.Kong
	kctx *kong.Context
}

// New initializes the command-line interface.
func New(version, configFile string) (*CLI, error) {
	c := &CLI{}
	kparser, err := kong.New(c,
		kong.Name("strata"),
		kong.UsageOnError(),
		kong.DefaultEnvars("STRATA"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Vars{
			"configFile": configFile,
			"version":    version,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating the Kong parser: %w", err)
	}

	c.kong = kparser

	return c, nil
}

// Parse the given command line arguments. This method must be called before
// Execute.
func (c *CLI) Parse(args []string) error {
	kctx, err := c.kong.Parse(args)
	if err != nil {
		return fmt.Errorf("failed parsing CLI arguments: %w", err)
	}
	c.kctx = kctx

	return nil
}

// Execute starts the command execution. Parse must be called before this method.
func (c *CLI) Execute(appCtx *actx.Context) error {
	if c.kctx == nil {
		panic("the CLI wasn't initialized properly")
	}
	c.kong.Stdout = appCtx.Stdout
	c.kong.Stderr = appCtx.Stderr

	//nolint:wrapcheck // This is fine.
	return c.kctx.Run(appCtx)
}

// ApplyConfig merges the configuration file values with any CLI overrides
// into cfg, which becomes the single source commands read from. CLI flags win
// over file values; missing values fall back to defaults.
func (c *CLI) ApplyConfig(cfg *config.Config) {
	if c.Dir != "" {
		cfg.Migrations.Dir = c.Dir
	}
	if c.Dialect != "" {
		cfg.Database.Dialect = c.Dialect
	}
	if c.DSN != "" {
		cfg.Database.DSN = c.DSN
	}
	if c.Table != "" {
		cfg.Migrations.Table = c.Table
	}

	if cfg.Migrations.Dir == "" {
		cfg.Migrations.Dir = "./migrations"
	}
	if cfg.Migrations.Table == "" {
		cfg.Migrations.Table = migrate.DefaultTable
	}
	if cfg.Database.Dialect == "" {
		cfg.Database.Dialect = "postgres"
	}
}
