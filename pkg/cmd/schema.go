package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// schema returns the schema command, which validates the tracking tables and,
// with --create, creates them when they are missing.
//
// Example usage:
//
//	dbmgr schema
//	dbmgr schema --create
func schema(p dbParams) *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Validate (or create) the tracking schema",
		Flags: connectionFlags(
			&cli.BoolFlag{
				Name:  "create",
				Usage: "create the tracking tables when they are missing",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conn, err := connect(cmd, p.Config)
			if err != nil {
				return err
			}
			defer conn.Close()

			m, err := conn.migrator(p.Project, false, nil)
			if err != nil {
				return err
			}

			if err := requireConnectivity(ctx, m); err != nil {
				return err
			}

			if err := m.EnsureSchema(ctx, cmd.Bool("create")); err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, "Tracking schema is valid")
			return nil
		},
	}
}
