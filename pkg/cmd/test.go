package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

// dbParams are the dependencies of commands that connect to a database.
type dbParams struct {
	fx.In

	Config  *config.Config
	Project *project.Project
}

// testCmd returns the test command, which runs the dialect's connectivity probe.
//
// Example usage:
//
//	dbmgr test
//	DBMGR_DSN="postgres://app@db01/orders" dbmgr test --dialect postgres
func testCmd(p dbParams) *cli.Command {
	return &cli.Command{
		Name:  "test",
		Usage: "Test connectivity to the database",
		Flags: connectionFlags(),
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

			fmt.Fprintf(cmd.Root().Writer, "Connected to %s database\n", conn.dialect.Name())
			return nil
		},
	}
}
