package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/m-mizutani/distup/pkg/domain/model"
	"github.com/m-mizutani/distup/pkg/usecase"
)

// PrintResult renders one execution outcome.
func PrintResult(res *model.ActionResult, showOutput bool) {
	if res.Success {
		color.New(color.FgGreen).Printf("✅ success")
	} else {
		color.New(color.FgRed).Printf("❌ failed")
	}
	if res.Duration > 0 {
		fmt.Printf(" (%s)", res.Duration.Round(10*time.Millisecond))
	}
	fmt.Println()

	if res.Error != "" {
		color.New(color.FgRed).Printf("   %s\n", res.Error)
	}
	if showOutput && strings.TrimSpace(res.Output) != "" {
		for _, line := range strings.Split(strings.TrimRight(res.Output, "\n"), "\n") {
			fmt.Printf("   %s\n", line)
		}
	}
}

// PrintSequenceResults renders a startup sequence's per-step outcomes in
// order, so the user can see exactly which step stopped the sequence.
func PrintSequenceResults(distro string, results []model.ActionResult) {
	if len(results) == 0 {
		fmt.Printf("%s: nothing to run\n", distro)
		return
	}

	fmt.Printf("%s:\n", distro)
	succeeded := 0
	for i, res := range results {
		label := res.StepID
		if label == "" {
			label = res.ActionID
		}
		if res.Success {
			succeeded++
			color.New(color.FgGreen).Printf("  %d. ✅ %s\n", i+1, label)
		} else {
			color.New(color.FgRed).Printf("  %d. ❌ %s: %s\n", i+1, label, res.Error)
		}
	}

	summary := color.New(color.FgGreen)
	if succeeded < len(results) {
		summary = color.New(color.FgYellow)
	}
	summary.Printf("  %d/%d steps succeeded\n", succeeded, len(results))
}

// PrintActionTable renders the action collection in display order.
func PrintActionTable(actions []model.Action) {
	if len(actions) == 0 {
		fmt.Println("no actions defined")
		return
	}

	for _, a := range actions {
		flags := actionFlagString(a)
		fmt.Printf("%-36s  %-20s  %-10s  %s\n", a.ID, a.Name, flags, describeScope(a.Scope))
	}
}

// PrintStartupConfig renders one startup sequence with resolved step
// commands.
func PrintStartupConfig(cfg *model.StartupConfig, registry *usecase.Registry) {
	state := "enabled"
	if !cfg.Enabled {
		state = "disabled"
	}
	fmt.Printf("%s (%s", cfg.DistroName, state)
	if cfg.RunOnAppStart {
		fmt.Printf(", runs on app start")
	}
	fmt.Println(")")

	for i, step := range cfg.Actions {
		policy := "abort on error"
		if step.ContinueOnError {
			policy = "continue on error"
		}
		fmt.Printf("  %d. %s [%s, %s]\n", i+1, describeStep(step, registry), step.Timeout(), policy)
	}
}

func describeStep(step model.StartupAction, registry *usecase.Registry) string {
	if step.ActionID != "" {
		if action, ok := registry.Find(step.ActionID); ok {
			return action.Name
		}
		return fmt.Sprintf("(deleted action %s)", step.ActionID)
	}
	if step.Command != "" {
		return step.Command
	}
	return "(empty step)"
}

func describeScope(s model.Scope) string {
	switch s.Kind {
	case model.ScopeAll:
		return "all distros"
	case model.ScopeSpecific:
		return strings.Join(s.Names, ", ")
	case model.ScopePattern:
		return "pattern: " + s.Pattern
	default:
		return string(s.Kind)
	}
}

func actionFlagString(a model.Action) string {
	var flags []string
	if a.ConfirmBeforeRun {
		flags = append(flags, "confirm")
	}
	if a.RequiresSudo {
		flags = append(flags, "sudo")
	}
	if a.RequiresStopped {
		flags = append(flags, "stopped")
	}
	if a.RunInTerminal {
		flags = append(flags, "term")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
