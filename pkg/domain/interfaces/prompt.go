package interfaces

import (
	"context"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// CredentialPrompt obtains a sudo-style credential from the user for a
// single invocation. Implementations must not cache the secret.
type CredentialPrompt interface {
	Prompt(ctx context.Context, action model.Action, distroName string) (*model.Credential, error)
}

// ConfirmPrompt asks the user to approve running an action flagged with
// confirmBeforeRun.
type ConfirmPrompt interface {
	Confirm(ctx context.Context, action model.Action, distroName string) (bool, error)
}
