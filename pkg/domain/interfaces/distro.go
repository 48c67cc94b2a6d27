package interfaces

import (
	"context"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// DistroService reports distribution state and supplies interpolation
// context from distribution metadata.
type DistroService interface {
	List(ctx context.Context) ([]model.Distro, error)
	IsRunning(ctx context.Context, distroName string) (bool, error)
	Context(ctx context.Context, distroName string) (model.DistroContext, error)
}
