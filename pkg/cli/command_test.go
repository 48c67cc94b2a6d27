package cli

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	gt.Equal(t, "distup", cmd.Name)

	names := map[string]bool{}
	for _, sub := range cmd.Commands {
		names[sub.Name] = true
	}
	for _, want := range []string{"run", "action", "startup", "config"} {
		gt.True(t, names[want])
	}
}

func TestDescribeScope(t *testing.T) {
	gt.Equal(t, "all distros", describeScope(model.AllScope()))
	gt.Equal(t, "Debian, Ubuntu", describeScope(model.SpecificScope("Debian", "Ubuntu")))
	gt.Equal(t, "pattern: ^Ubuntu-", describeScope(model.PatternScope("^Ubuntu-")))
}

func TestActionFlagString(t *testing.T) {
	gt.Equal(t, "-", actionFlagString(model.Action{}))
	gt.Equal(t, "confirm,sudo", actionFlagString(model.Action{ConfirmBeforeRun: true, RequiresSudo: true}))
	gt.Equal(t, "stopped,term", actionFlagString(model.Action{RequiresStopped: true, RunInTerminal: true}))
}

func TestDescribeStep(t *testing.T) {
	t.Run("inline command", func(t *testing.T) {
		step := model.StartupAction{ID: "s1", Command: "echo hi"}
		gt.Equal(t, "echo hi", describeStep(step, nil))
	})

	t.Run("empty step", func(t *testing.T) {
		gt.Equal(t, "(empty step)", describeStep(model.StartupAction{ID: "s1"}, nil))
	})
}
