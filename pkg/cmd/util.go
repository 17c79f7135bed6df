package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/clickhouse"
	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/metrics"
	"github.com/pseudomuto/dbmgr/pkg/migrator"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/pseudomuto/dbmgr/pkg/tokens"
	"github.com/urfave/cli/v3"
)

// connection is an open database and the dialect it speaks.
type connection struct {
	cfg     *config.Config
	dialect dialect.Dialect
	exec    executor.Executor
}

var (
	dsnFlag = &cli.StringFlag{
		Name:    "dsn",
		Usage:   "driver connection string, overrides the configured connection",
		Sources: cli.EnvVars("DBMGR_DSN"),
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}

	dialectFlag = &cli.StringFlag{
		Name:    "dialect",
		Usage:   "database engine: " + fmt.Sprint(dialect.Names()),
		Sources: cli.EnvVars("DBMGR_DIALECT"),
		Config: cli.StringConfig{
			TrimSpace: true,
		},
	}
)

// connectionFlags are shared by every command that talks to a database.
func connectionFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{dsnFlag, dialectFlag}, extra...)
}

// effectiveConfig applies the --dsn and --dialect overrides to a copy of cfg.
func effectiveConfig(cmd *cli.Command, cfg *config.Config) *config.Config {
	c := config.Default()
	if cfg != nil {
		copied := *cfg
		c = &copied
	}

	if d := cmd.String("dialect"); d != "" {
		c.Dialect = d
	}

	if dsn := cmd.String("dsn"); dsn != "" {
		c.Connection.DSN = dsn
	}

	return c
}

// connect opens the configured database. ClickHouse connections go through the
// native connector so TLS settings apply.
func connect(cmd *cli.Command, cfg *config.Config) (*connection, error) {
	c := effectiveConfig(cmd, cfg)

	d, err := c.GetDialect()
	if err != nil {
		return nil, err
	}

	dsn, err := c.Resolve(d)
	if err != nil {
		return nil, err
	}

	opts := executor.OptionsFor(d, c.Timeouts.Command, c.Timeouts.Transaction)
	opts.Logger = slog.Default()

	var exec executor.Executor
	if d.Name() == "clickhouse" {
		db, err := clickhouse.OpenDB(dsn, c.ClickHouse)
		if err != nil {
			return nil, err
		}
		exec = executor.New(db, opts)
	} else {
		if exec, err = executor.Open(d.DriverName(), dsn, opts); err != nil {
			return nil, err
		}
	}

	slog.Debug("Opened connection", "dialect", d.Name())
	return &connection{cfg: c, dialect: d, exec: exec}, nil
}

func (c *connection) Close() {
	if err := c.exec.Close(); err != nil {
		slog.Warn("Failed to close connection", "err", err)
	}
}

// migrator returns a Migrator for proj. A missing default token file is treated
// as an empty table; an explicitly configured one must exist.
func (c *connection) migrator(proj *project.Project, dryRun bool, rec *metrics.Recorder) (*migrator.Migrator, error) {
	table, err := loadTokens(proj, c.cfg)
	if err != nil {
		return nil, err
	}

	return migrator.New(migrator.Config{
		Executor: c.exec,
		Dialect:  c.dialect,
		Project:  proj,
		Tokens:   table,
		DryRun:   dryRun,
		Logger:   slog.Default(),
		Metrics:  rec,
	}), nil
}

func loadTokens(proj *project.Project, cfg *config.Config) (tokens.Table, error) {
	path := proj.TokenFile(cfg.Tokens)

	if _, err := os.Stat(path); os.IsNotExist(err) && path == proj.TokenFile("") {
		slog.Debug("No token file found", "path", path)
		return nil, nil
	}

	table, err := tokens.LoadFile(path)
	if err != nil {
		return nil, &config.ConfigurationError{Field: "tokens", Err: err}
	}

	slog.Debug("Loaded tokens", "path", path, "count", len(table))
	return table, nil
}

func requireConnectivity(ctx context.Context, m *migrator.Migrator) error {
	if !m.HaveConnectivity(ctx) {
		return errors.New("unable to connect to the database")
	}

	return nil
}
