package interfaces

import (
	"context"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// CommandDispatcher is the opaque executor boundary. It receives fully
// interpolated commands; whether and how they actually run is its concern
// alone. Once a command is handed over there is no way to cancel it from
// this side.
type CommandDispatcher interface {
	ExecuteAction(ctx context.Context, req model.ExecuteRequest) (*model.ActionResult, error)
	// RunActionInTerminal spawns the command in an interactive terminal
	// and returns once the terminal is launched, not when the command
	// finishes.
	RunActionInTerminal(ctx context.Context, req model.ExecuteRequest) error
}
