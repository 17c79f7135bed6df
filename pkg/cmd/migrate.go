package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/metrics"
	"github.com/pseudomuto/dbmgr/pkg/migrator"
	"github.com/urfave/cli/v3"
)

// migrate returns the migrate command, which deploys the project.
//
// Without --blue or --green every delta runs (Blue and Green included), then
// the Current and Post phases. --blue runs Deltas/Blue and Current; --green runs
// Deltas/Green and Post. The tracking tables are created on first use unless
// --no-create is given.
//
// Example usage:
//
//	# Deploy everything
//	dbmgr migrate
//
//	# Show what would run without changing anything
//	dbmgr migrate --dry-run
//
//	# Blue/green deployment
//	dbmgr migrate --blue
//	dbmgr migrate --green
func migrate(p dbParams) *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"deploy"},
		Usage:   "Deploy the project to the database",
		Before:  requireConfig(p.Config),
		Flags: connectionFlags(
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "show what would be executed without applying changes",
			},
			&cli.BoolFlag{
				Name:  "blue",
				Usage: "deploy Deltas/Blue and Current only",
			},
			&cli.BoolFlag{
				Name:  "green",
				Usage: "deploy Deltas/Green and Post only",
			},
			&cli.BoolFlag{
				Name:  "no-create",
				Usage: "fail instead of creating missing tracking tables",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runMigrate(ctx, cmd, p)
		},
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command, p dbParams) error {
	mode, err := blueGreenDir(cmd)
	if err != nil {
		return err
	}

	conn, err := connect(cmd, p.Config)
	if err != nil {
		return err
	}
	defer conn.Close()

	rec := metrics.New()
	m, err := conn.migrator(p.Project, cmd.Bool("dry-run"), rec)
	if err != nil {
		return err
	}

	slog.Info("Starting deployment",
		"run_id", m.RunID(),
		"dialect", conn.dialect.Name(),
		"mode", deployMode(mode),
		"dry_run", m.DryRun(),
	)

	if err := requireConnectivity(ctx, m); err != nil {
		return err
	}

	if err := m.EnsureSchema(ctx, !cmd.Bool("no-create")); err != nil {
		return err
	}

	deploy := m.Deploy
	switch mode {
	case consts.BlueDir:
		deploy = m.DeployBlue
	case consts.GreenDir:
		deploy = m.DeployGreen
	}

	updated, err := deploy(ctx)
	writeMetrics(p, conn, rec)
	if err != nil {
		return err
	}

	reportDeployment(cmd, p, m, updated)
	return nil
}

func deployMode(mode string) string {
	if mode == "" {
		return "full"
	}

	return mode
}

func writeMetrics(p dbParams, conn *connection, rec *metrics.Recorder) {
	path := conn.cfg.MetricsFile
	if path == "" {
		return
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Project.Root(), path)
	}

	if err := rec.WriteTextfile(path); err != nil {
		slog.Warn("Failed to write metrics", "path", path, "err", err)
	}
}

func reportDeployment(cmd *cli.Command, p dbParams, m *migrator.Migrator, updated bool) {
	w := cmd.Root().Writer

	if m.DryRun() {
		planned := m.Planned()
		fmt.Fprintf(w, "Dry run: %d script(s) would be executed\n", len(planned))
		for _, entry := range planned {
			fmt.Fprintf(w, "  %-7s %s\n", entry.Phase, relativePath(p, entry.Path))
		}
		return
	}

	if !updated {
		fmt.Fprintln(w, "Database is up to date")
		return
	}

	history := m.History()
	fmt.Fprintf(w, "Executed %d script(s)\n", len(history))
	for _, entry := range history {
		fmt.Fprintf(w, "  %-7s %s\n", entry.Phase, relativePath(p, entry.Path))
	}
}

func relativePath(p dbParams, path string) string {
	rel, err := filepath.Rel(p.Project.Root(), path)
	if err != nil {
		return path
	}

	return filepath.ToSlash(rel)
}
