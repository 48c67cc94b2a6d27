package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/m-mizutani/distup/pkg/domain/interfaces"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

type credentialPrompt struct{}

// NewCredentialPrompt returns the interactive sudo credential prompt. The
// secret lives only in the returned Credential; nothing is cached here.
func NewCredentialPrompt() interfaces.CredentialPrompt {
	return &credentialPrompt{}
}

func (p *credentialPrompt) Prompt(ctx context.Context, action model.Action, distroName string) (*model.Credential, error) {
	var secret string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(fmt.Sprintf("Password for %q on %s", action.Name, distroName)).
			EchoMode(huh.EchoModePassword).
			Value(&secret),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}
	return &model.Credential{Secret: secret}, nil
}

type confirmPrompt struct{}

// NewConfirmPrompt returns the interactive confirmation prompt used for
// actions flagged with confirmBeforeRun.
func NewConfirmPrompt() interfaces.ConfirmPrompt {
	return &confirmPrompt{}
}

func (p *confirmPrompt) Confirm(ctx context.Context, action model.Action, distroName string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Run %q on %s?", action.Name, distroName)).
			Value(&confirmed),
	))
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return confirmed, nil
}
