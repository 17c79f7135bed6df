package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/dbmgr/pkg/config"
	"github.com/pseudomuto/dbmgr/pkg/dialect"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/urfave/cli/v3"
)

// initCmd returns the init command, which creates the project layout in the
// current directory: the Deltas, Current and Post directories, one Current
// directory per object type of the dialect, the default token file and
// dbmgr.yaml. Existing files are left untouched.
//
// Example usage:
//
//	dbmgr init
//	dbmgr init --dialect postgres --bluegreen
func initCmd(p *project.Project) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new dbmgr project",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dialect",
				Usage:   "database engine the project targets",
				Value:   config.DefaultDialect,
				Sources: cli.EnvVars("DBMGR_DIALECT"),
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "bluegreen",
				Usage: "create the Deltas/Blue and Deltas/Green directories",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			d, err := dialect.Get(cmd.String("dialect"))
			if err != nil {
				return &config.ConfigurationError{Field: "dialect", Err: err}
			}

			if err := p.Initialize(project.InitOptions{
				BlueGreen: cmd.Bool("bluegreen"),
				Dialect:   d,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.Root().Writer, "Initialized %s project in %s\n", d.Name(), p.Root())
			return nil
		},
	}
}
