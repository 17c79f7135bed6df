package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/pseudomuto/dbmgr/pkg/cmd"
	"github.com/pseudomuto/dbmgr/pkg/config"
	"go.uber.org/fx"
)

// NB: These are set by GoReleaser during a build.
var (
	version string
	commit  string
	date    string
)

func main() {
	ctx := context.Background()

	app := fx.New(
		fx.NopLogger,
		fx.Supply(os.Args),
		fx.Supply(&cmd.Version{Version: version, Commit: commit, Timestamp: date}),
		fx.Provide(func() context.Context { return ctx }),
		config.Module,
		cmd.Module,
	)

	if err := app.Err(); err != nil {
		slog.Error("Failed to start dbmgr", "err", err)
		os.Exit(cmd.ExitCode(err))
	}

	app.Run()
}
