package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// tables returns the tables command, which prints the user tables of the
// database in foreign key order: referenced tables come first.
//
// Example usage:
//
//	dbmgr tables
func tables(p dbParams) *cli.Command {
	return &cli.Command{
		Name:  "tables",
		Usage: "List tables in foreign key dependency order",
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

			names, err := m.TableOrder(ctx)
			if err != nil {
				return err
			}

			for _, name := range names {
				fmt.Fprintln(cmd.Root().Writer, name)
			}
			return nil
		},
	}
}
