package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/distup/pkg/domain/model"
	"github.com/m-mizutani/distup/pkg/usecase"
)

// NewActionCommand builds the action management command tree.
func NewActionCommand() *cli.Command {
	return &cli.Command{
		Name:  "action",
		Usage: "Manage action definitions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List actions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "distro",
						Aliases: []string{"d"},
						Usage:   "Only show actions whose scope covers this distribution",
					},
				},
				Action: actionList,
			},
			{
				Name:   "add",
				Usage:  "Add a new action",
				Flags:  actionFlags(),
				Action: actionAdd,
			},
			{
				Name:      "update",
				Usage:     "Update an existing action",
				ArgsUsage: "<id>",
				Flags:     actionFlags(),
				Action:    actionUpdate,
			},
			{
				Name:      "delete",
				Usage:     "Delete an action",
				ArgsUsage: "<id>",
				Action:    actionDelete,
			},
			{
				Name:  "export",
				Usage: "Export all actions as a versioned document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the document to a file instead of stdout",
					},
				},
				Action: actionExport,
			},
			{
				Name:      "import",
				Usage:     "Import actions from a document file or a gist",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "replace",
						Usage: "Replace the whole collection instead of merging by id",
					},
					&cli.StringFlag{
						Name:  "gist",
						Usage: "Fetch the document from a GitHub gist ID",
					},
					&cli.StringFlag{
						Name:  "gist-file",
						Usage: "File name inside the gist (default: first .json file)",
					},
				},
				Action: actionImport,
			},
		},
	}
}

func actionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Display label"},
		&cli.StringFlag{Name: "command", Usage: "Command template ({{distro}}, {{home}}, {{user}}, {{winhome}})"},
		&cli.StringFlag{Name: "icon", Usage: "Icon name", Value: string(model.IconTerminal)},
		&cli.StringFlag{Name: "scope", Usage: "Scope kind: all, specific or pattern", Value: string(model.ScopeAll)},
		&cli.StringSliceFlag{Name: "distros", Usage: "Distribution names for a specific scope"},
		&cli.StringFlag{Name: "pattern", Usage: "Regular expression for a pattern scope"},
		&cli.BoolFlag{Name: "confirm", Usage: "Ask for confirmation before running"},
		&cli.BoolFlag{Name: "show-output", Usage: "Show command output after running"},
		&cli.BoolFlag{Name: "sudo", Usage: "Run with elevated privileges"},
		&cli.BoolFlag{Name: "requires-stopped", Usage: "Refuse to run while the distribution is running"},
		&cli.BoolFlag{Name: "terminal", Usage: "Run in an interactive terminal"},
		&cli.IntFlag{Name: "order", Usage: "Display sort key"},
	}
}

func scopeFromFlags(cmd *cli.Command) (model.Scope, error) {
	switch model.ScopeKind(cmd.String("scope")) {
	case model.ScopeAll:
		return model.AllScope(), nil
	case model.ScopeSpecific:
		return model.SpecificScope(cmd.StringSlice("distros")...), nil
	case model.ScopePattern:
		// The pattern is stored as entered, valid or not; an
		// uncompilable pattern just never matches.
		return model.PatternScope(cmd.String("pattern")), nil
	default:
		return model.Scope{}, fmt.Errorf("unknown scope kind: %s", cmd.String("scope"))
	}
}

func actionList(ctx context.Context, cmd *cli.Command) error {
	_, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	var actions []model.Action
	if distro := cmd.String("distro"); distro != "" {
		actions = rt.registry.ActionsFor(distro)
	} else {
		actions = rt.registry.Actions()
	}
	PrintActionTable(actions)
	return nil
}

func actionAdd(ctx context.Context, cmd *cli.Command) error {
	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.String("name") == "" || cmd.String("command") == "" {
		return fmt.Errorf("--name and --command are required")
	}
	scope, err := scopeFromFlags(cmd)
	if err != nil {
		return err
	}

	action := model.Action{
		ID:               uuid.NewString(),
		Name:             cmd.String("name"),
		Icon:             model.ActionIcon(cmd.String("icon")),
		Command:          cmd.String("command"),
		Scope:            scope,
		ConfirmBeforeRun: cmd.Bool("confirm"),
		ShowOutput:       cmd.Bool("show-output"),
		RequiresSudo:     cmd.Bool("sudo"),
		RequiresStopped:  cmd.Bool("requires-stopped"),
		RunInTerminal:    cmd.Bool("terminal"),
		Order:            int(cmd.Int("order")),
	}
	if err := rt.registry.Add(ctx, action); err != nil {
		return err
	}
	fmt.Printf("added action %s (%s)\n", action.Name, action.ID)
	return nil
}

func actionUpdate(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: distup action update <id>")
	}
	id := cmd.Args().Get(0)

	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	existing, ok := rt.registry.Find(id)
	if !ok {
		return fmt.Errorf("unknown action: %s", id)
	}

	action := *existing
	if cmd.IsSet("name") {
		action.Name = cmd.String("name")
	}
	if cmd.IsSet("command") {
		action.Command = cmd.String("command")
	}
	if cmd.IsSet("icon") {
		action.Icon = model.ActionIcon(cmd.String("icon"))
	}
	if cmd.IsSet("scope") || cmd.IsSet("distros") || cmd.IsSet("pattern") {
		scope, err := scopeFromFlags(cmd)
		if err != nil {
			return err
		}
		action.Scope = scope
	}
	if cmd.IsSet("confirm") {
		action.ConfirmBeforeRun = cmd.Bool("confirm")
	}
	if cmd.IsSet("show-output") {
		action.ShowOutput = cmd.Bool("show-output")
	}
	if cmd.IsSet("sudo") {
		action.RequiresSudo = cmd.Bool("sudo")
	}
	if cmd.IsSet("requires-stopped") {
		action.RequiresStopped = cmd.Bool("requires-stopped")
	}
	if cmd.IsSet("terminal") {
		action.RunInTerminal = cmd.Bool("terminal")
	}
	if cmd.IsSet("order") {
		action.Order = int(cmd.Int("order"))
	}

	if err := rt.registry.Update(ctx, action); err != nil {
		return err
	}
	fmt.Printf("updated action %s\n", action.ID)
	return nil
}

func actionDelete(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("usage: distup action delete <id>")
	}
	id := cmd.Args().Get(0)

	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}
	if err := rt.registry.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Printf("deleted action %s\n", id)
	return nil
}

func actionExport(ctx context.Context, cmd *cli.Command) error {
	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	doc, err := rt.registry.ExportAll(ctx)
	if err != nil {
		return err
	}
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, data, 0600); err != nil {
			return err
		}
		fmt.Printf("exported %d actions to %s\n", len(doc.Actions), output)
		return nil
	}
	fmt.Println(string(data))
	return nil
}

func actionImport(ctx context.Context, cmd *cli.Command) error {
	ctx, rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case cmd.String("gist") != "":
		gists := usecase.NewGistService(ctx)
		data, err = gists.FetchDocument(ctx, cmd.String("gist"), cmd.String("gist-file"))
		if err != nil {
			return err
		}
	case cmd.Args().Len() == 1:
		data, err = os.ReadFile(cmd.Args().Get(0))
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("usage: distup action import <file> (or --gist <id>)")
	}

	mode := model.MergeModeMerge
	if cmd.Bool("replace") {
		mode = model.MergeModeReplace
	}
	if err := rt.registry.ImportAll(ctx, data, mode); err != nil {
		return err
	}
	fmt.Printf("imported actions (%s), collection now holds %d\n", mode, len(rt.registry.Actions()))
	return nil
}
