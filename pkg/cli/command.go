package cli

import (
	"github.com/urfave/cli/v3"
)

func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    "distup",
		Usage:   "Define and run actions against WSL distributions",
		Version: "0.1.0",
		Description: `distup manages reusable shell actions scoped to WSL distributions and
per-distribution startup sequences.

Actions are stored locally; "distup run" executes one ad hoc, and
"distup startup run" drives a distribution's configured boot sequence.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to config file",
			},
		},
		Commands: []*cli.Command{
			NewRunCommand(),
			NewActionCommand(),
			NewStartupCommand(),
			NewConfigCommand(),
		},
	}
}
