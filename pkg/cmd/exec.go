package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"
)

// execCmd returns the exec command, which runs a single SQL file split on the
// dialect's batch separator. Tokens are not substituted and nothing is tracked.
//
// Example usage:
//
//	dbmgr exec scripts/backfill.sql
func execCmd(p dbParams) *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Execute a SQL file against the database",
		ArgsUsage: "<file>",
		Flags:     connectionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("exactly one script file is required")
			}
			path := cmd.Args().First()

			conn, err := connect(cmd, p.Config)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.exec.ExecScript(ctx, path, conn.dialect.BatchSeparator(), nil); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Executed %s\n", path)
			return nil
		},
	}
}
