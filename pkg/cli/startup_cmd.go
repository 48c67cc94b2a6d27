package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// NewStartupCommand builds the startup sequence command tree.
func NewStartupCommand() *cli.Command {
	return &cli.Command{
		Name:  "startup",
		Usage: "Manage and run per-distribution startup sequences",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a distribution's startup sequence",
				ArgsUsage: "<distro>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Run every sequence flagged to run on app start",
					},
				},
				Action: startupRun,
			},
			{
				Name:      "show",
				Usage:     "Show a distribution's startup sequence",
				ArgsUsage: "<distro>",
				Action:    startupShow,
			},
			{
				Name:      "set",
				Usage:     "Set a distribution's startup sequence from a steps file",
				ArgsUsage: "<distro>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file holding the ordered step list",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "run-on-app-start",
						Usage: "Run this sequence automatically on app start",
					},
					&cli.BoolFlag{
						Name:  "disabled",
						Usage: "Store the sequence but keep it ineligible to run",
					},
				},
				Action: startupSet,
			},
			{
				Name:      "enable",
				Usage:     "Enable a distribution's startup sequence",
				ArgsUsage: "<distro>",
				Action:    startupSetEnabled(true),
			},
			{
				Name:      "disable",
				Usage:     "Disable a distribution's startup sequence",
				ArgsUsage: "<distro>",
				Action:    startupSetEnabled(false),
			},
			{
				Name:      "delete",
				Usage:     "Delete a distribution's startup sequence",
				ArgsUsage: "<distro>",
				Action:    startupDelete,
			},
		},
	}
}

func startupRun(ctx context.Context, cmd *cli.Command) error {
	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("all") {
		failed := false
		for distro, results := range rt.sequencer.RunAll(ctx) {
			PrintSequenceResults(distro, results)
			for _, res := range results {
				if !res.Success {
					failed = true
				}
			}
		}
		if failed {
			return cli.Exit("", 1)
		}
		return nil
	}

	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: distup startup run <distro> (or --all)")
	}
	distro := cmd.Args().Get(0)

	results := rt.sequencer.RunSequence(ctx, distro)
	PrintSequenceResults(distro, results)
	for _, res := range results {
		if !res.Success {
			return cli.Exit("", 1)
		}
	}
	return nil
}

func startupShow(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: distup startup show <distro>")
	}
	distro := cmd.Args().Get(0)

	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	cfg, err := rt.store.GetStartupConfig(ctx, distro)
	if err != nil {
		return err
	}
	if cfg == nil {
		fmt.Printf("no startup sequence configured for %s\n", distro)
		return nil
	}
	PrintStartupConfig(cfg, rt.registry)
	return nil
}

func startupSet(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: distup startup set <distro> --file <steps.json>")
	}
	distro := cmd.Args().Get(0)

	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return err
	}
	var steps []model.StartupAction
	if err := json.Unmarshal(data, &steps); err != nil {
		return fmt.Errorf("steps file is not a valid step list: %w", err)
	}
	for i, step := range steps {
		if step.ID == "" {
			return fmt.Errorf("step %d is missing an id", i)
		}
		if step.TimeoutSeconds < 0 {
			return fmt.Errorf("step %s has a negative timeout", step.ID)
		}
	}

	cfg := model.StartupConfig{
		DistroName:    distro,
		Actions:       steps,
		RunOnAppStart: cmd.Bool("run-on-app-start"),
		Enabled:       !cmd.Bool("disabled"),
	}
	if _, err := rt.store.SaveStartupConfig(ctx, cfg); err != nil {
		return err
	}
	fmt.Printf("saved startup sequence for %s (%d steps)\n", distro, len(steps))
	return nil
}

func startupSetEnabled(enabled bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() != 1 {
			return fmt.Errorf("usage: distup startup %s <distro>", map[bool]string{true: "enable", false: "disable"}[enabled])
		}
		distro := cmd.Args().Get(0)

		ctx, rt, err := newRuntime(ctx, cmd)
		if err != nil {
			return err
		}

		cfg, err := rt.store.GetStartupConfig(ctx, distro)
		if err != nil {
			return err
		}
		if cfg == nil {
			return fmt.Errorf("no startup sequence configured for %s", distro)
		}
		cfg.Enabled = enabled
		if _, err := rt.store.SaveStartupConfig(ctx, *cfg); err != nil {
			return err
		}
		fmt.Printf("startup sequence for %s is now %s\n", distro, map[bool]string{true: "enabled", false: "disabled"}[enabled])
		return nil
	}
}

func startupDelete(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: distup startup delete <distro>")
	}
	distro := cmd.Args().Get(0)

	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	if _, err := rt.store.DeleteStartupConfig(ctx, distro); err != nil {
		return err
	}
	fmt.Printf("deleted startup sequence for %s\n", distro)
	return nil
}
