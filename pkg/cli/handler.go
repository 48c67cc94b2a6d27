package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/distup/pkg/domain/model"
	"github.com/m-mizutani/distup/pkg/usecase"
)

// runtime wires the orchestration core to its concrete collaborators for
// one CLI invocation.
type runtime struct {
	config      *model.Config
	store       *usecase.FileStore
	dispatcher  *usecase.WSLDispatcher
	registry    *usecase.Registry
	coordinator *usecase.Coordinator
	sequencer   *usecase.Sequencer
}

// newRuntime builds the component graph and loads the action collection.
// The returned context carries the configured logger.
func newRuntime(ctx context.Context, cmd *cli.Command) (context.Context, *runtime, error) {
	logLevel := slog.LevelWarn
	if cmd.Bool("debug") {
		logLevel = slog.LevelDebug
	} else if cmd.Bool("verbose") {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	ctx = ctxlog.With(ctx, logger)

	configService := usecase.NewConfigService()
	var config *model.Config
	var err error
	if path := cmd.String("config"); path != "" {
		config, err = configService.Load(path)
	} else {
		config, err = configService.LoadDefault()
	}
	if err != nil {
		return ctx, nil, err
	}

	store := usecase.NewFileStore(config.StorePath)
	dispatcher := usecase.NewWSLDispatcher(usecase.WSLDispatcherOptions{
		Binary:      config.WSLBinary,
		DefaultUser: config.DefaultUser,
	})
	registry := usecase.NewRegistry(store)
	coordinator := usecase.NewCoordinator(usecase.CoordinatorOptions{
		Dispatcher:  dispatcher,
		Distros:     dispatcher,
		Credentials: NewCredentialPrompt(),
		Registry:    registry,
	})
	sequencer := usecase.NewSequencer(usecase.SequencerOptions{
		Coordinator:    coordinator,
		Registry:       registry,
		Startups:       store,
		DefaultTimeout: config.StepTimeout(),
	})

	if err := registry.Load(ctx); err != nil {
		return ctx, nil, err
	}

	return ctx, &runtime{
		config:      config,
		store:       store,
		dispatcher:  dispatcher,
		registry:    registry,
		coordinator: coordinator,
		sequencer:   sequencer,
	}, nil
}
