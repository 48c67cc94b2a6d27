package interfaces

import (
	"context"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// ActionStore is the persistence boundary for action definitions. Every
// mutation returns the canonical collection after the change; callers
// replace their local copy wholesale instead of patching it, so client and
// store never drift.
type ActionStore interface {
	ListActions(ctx context.Context) ([]model.Action, error)
	AddAction(ctx context.Context, action model.Action) ([]model.Action, error)
	UpdateAction(ctx context.Context, action model.Action) ([]model.Action, error)
	DeleteAction(ctx context.Context, id string) ([]model.Action, error)

	ExportActions(ctx context.Context) (*model.ExportDocument, error)
	ImportActions(ctx context.Context, doc *model.ExportDocument, mode model.MergeMode) ([]model.Action, error)
}

// StartupStore persists per-distribution startup configurations, keyed by
// distribution name.
type StartupStore interface {
	ListStartupConfigs(ctx context.Context) ([]model.StartupConfig, error)
	// GetStartupConfig returns nil (not an error) when no config exists
	// for the distribution.
	GetStartupConfig(ctx context.Context, distroName string) (*model.StartupConfig, error)
	SaveStartupConfig(ctx context.Context, config model.StartupConfig) ([]model.StartupConfig, error)
	DeleteStartupConfig(ctx context.Context, distroName string) ([]model.StartupConfig, error)
}
