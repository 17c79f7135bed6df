package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// extract returns the extract command, which reverse-engineers the
// programmable objects of the database into Current scripts, replacing files
// that already exist.
//
// Example usage:
//
//	dbmgr extract
//	dbmgr extract --dry-run
func extract(p dbParams) *cli.Command {
	return &cli.Command{
		Name:   "extract",
		Usage:  "Extract object definitions from the database into Current",
		Before: requireConfig(p.Config),
		Flags: connectionFlags(
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "list the objects without writing any files",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			conn, err := connect(cmd, p.Config)
			if err != nil {
				return err
			}
			defer conn.Close()

			m, err := conn.migrator(p.Project, cmd.Bool("dry-run"), nil)
			if err != nil {
				return err
			}

			n, err := m.ExtractCurrent(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Extracted %d object(s) into %s\n", n, relativePath(p, p.Project.CurrentDir()))
			return nil
		},
	}
}
