package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/executor"
	"github.com/pseudomuto/dbmgr/pkg/graph"
	"github.com/pseudomuto/dbmgr/pkg/migrator"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/pseudomuto/dbmgr/pkg/scripts"
	"github.com/pseudomuto/dbmgr/pkg/tokens"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

// Process exit codes reported by ExitCode.
const (
	ExitOK = iota
	ExitGeneral
	ExitConfig
	ExitStructural
	ExitUnmatchedToken
	ExitScriptFailure
	ExitSchemaInvalid
)

type (
	Params struct {
		fx.In

		Args       []string
		Commands   []*cli.Command `group:"commands"`
		Ctx        context.Context
		Lifecycle  fx.Lifecycle
		Shutdowner fx.Shutdowner
		Version    *Version
	}

	Version struct {
		Version   string
		Commit    string
		Timestamp string
	}
)

// Run builds the dbmgr CLI application and runs it when the fx app starts. The
// process exit code is derived from the returned error with ExitCode.
//
// Commands operate on the project in the current working directory. dbmgr.yaml
// (or the file named by $DBMGR_CONFIG) is loaded before any command runs.
//
// Example usage:
//
//	dbmgr init --dialect postgres --bluegreen
//	dbmgr new "add orders table" --down
//	dbmgr migrate --dry-run
//	dbmgr migrate --blue
func Run(p Params) {
	cli.VersionPrinter = func(cmd *cli.Command) {
		fmt.Fprintln(cmd.Writer, "Version:", p.Version.Version)
		fmt.Fprintln(cmd.Writer, "Commit:", p.Version.Commit)
		fmt.Fprintln(cmd.Writer, "Date:", p.Version.Timestamp)
	}

	app := &cli.Command{
		Name:  "dbmgr",
		Usage: "Convention-driven database deployments",
		Description: `dbmgr deploys a database project laid out as versioned deltas, idempotent
object definitions (Current) and post-deployment scripts (Post). Deltas run once,
Current scripts run when their content changes, and Post scripts run every time.`,
		Version: p.Version.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level := slog.LevelInfo
			if cmd.Bool("verbose") {
				level = slog.LevelDebug
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},
		Commands: p.Commands,
	}

	p.Lifecycle.Append(fx.StartHook(func() {
		if err := app.Run(p.Ctx, p.Args); err != nil {
			slog.Error("Error running command", "err", err)
			_ = p.Shutdowner.Shutdown(fx.ExitCode(ExitCode(err)))
			return
		}

		_ = p.Shutdowner.Shutdown(fx.ExitCode(ExitOK))
	}))
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		cfgErr     *config.ConfigurationError
		unresolved *scripts.UnresolvedDependencyError
		prefix     *scripts.UnsupportedPrefixError
		circular   *graph.CircularDependencyError
		unmatched  *tokens.UnmatchedTokenError
		scriptErr  *migrator.ScriptExecutionError
		batchErr   *executor.ScriptError
	)

	switch {
	case errors.As(err, &cfgErr):
		return ExitConfig
	case errors.As(err, &unresolved), errors.As(err, &prefix), errors.As(err, &circular):
		return ExitStructural
	// Checked before script failures, which wrap substitution errors.
	case errors.As(err, &unmatched):
		return ExitUnmatchedToken
	case errors.As(err, &scriptErr), errors.As(err, &batchErr):
		return ExitScriptFailure
	case errors.Is(err, migrator.ErrSchemaInvalid):
		return ExitSchemaInvalid
	}

	return ExitGeneral
}

func currentProject() (*project.Project, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current working directory")
	}

	return project.New(wd), nil
}

func requireConfig(cfg *config.Config) func(context.Context, *cli.Command) (context.Context, error) {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		if cfg == nil {
			return ctx, &config.ConfigurationError{
				Field: "file",
				Err:   errors.Errorf("%s not found, run dbmgr init first", consts.ConfigFile),
			}
		}

		return ctx, nil
	}
}
