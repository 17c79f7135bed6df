package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pseudomuto/dbmgr/pkg/consts"
	"github.com/pseudomuto/dbmgr/pkg/project"
	"github.com/urfave/cli/v3"
)

// newCmd returns the new command, which writes an empty delta script stamped
// with the current time. All arguments are joined to form its description.
//
// Example usage:
//
//	dbmgr new add orders table
//	dbmgr new "drop legacy columns" --down --green
func newCmd(p *project.Project) *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "Create a new delta script",
		ArgsUsage: "<description>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "down",
				Usage: "also create a .down script",
			},
			&cli.BoolFlag{
				Name:  "blue",
				Usage: "place the delta under Deltas/Blue",
			},
			&cli.BoolFlag{
				Name:  "green",
				Usage: "place the delta under Deltas/Green",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(name) == "" {
				return errors.New("a delta description is required")
			}

			subdir, err := blueGreenDir(cmd)
			if err != nil {
				return err
			}

			base, err := p.NewDelta(name, project.DeltaOptions{
				Down:   cmd.Bool("down"),
				Subdir: subdir,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, base+consts.DeltaUpExt)
			return nil
		},
	}
}

// blueGreenDir returns the Deltas subdirectory selected by --blue or --green.
func blueGreenDir(cmd *cli.Command) (string, error) {
	blue, green := cmd.Bool("blue"), cmd.Bool("green")

	switch {
	case blue && green:
		return "", errors.New("--blue and --green are mutually exclusive")
	case blue:
		return consts.BlueDir, nil
	case green:
		return consts.GreenDir, nil
	}

	return "", nil
}
