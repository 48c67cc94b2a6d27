package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewRunCommand builds the ad-hoc execution command.
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run one action against a distribution",
		ArgsUsage: "<action-id-or-name> <distro>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Skip the confirmation prompt",
			},
		},
		Action: runAction,
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: distup run <action-id-or-name> <distro>")
	}
	name := cmd.Args().Get(0)
	distro := cmd.Args().Get(1)

	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	action, ok := rt.registry.Find(name)
	if !ok {
		return fmt.Errorf("unknown action: %s", name)
	}
	if !action.Scope.Matches(distro) {
		return fmt.Errorf("action %q is not available for distribution %q", action.Name, distro)
	}

	if action.ConfirmBeforeRun && !cmd.Bool("yes") {
		confirmed, err := NewConfirmPrompt().Confirm(ctx, *action, distro)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("aborted")
			return nil
		}
	}

	res := rt.coordinator.ExecuteAction(ctx, *action, distro)
	PrintResult(res, action.ShowOutput)
	if !res.Success {
		return cli.Exit("", 1)
	}
	return nil
}
