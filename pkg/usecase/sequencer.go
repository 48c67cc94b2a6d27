package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/interfaces"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

// Sequencer drives the coordinator through a distribution's startup steps
// in stored order. Steps run strictly one at a time: later steps may
// depend on state mutated by earlier ones, so there is no parallelism
// here.
type Sequencer struct {
	coordinator *Coordinator
	registry    *Registry
	startups    interfaces.StartupStore

	// defaultTimeout bounds steps that carry no timeout of their own.
	defaultTimeout time.Duration
}

type SequencerOptions struct {
	Coordinator    *Coordinator
	Registry       *Registry
	Startups       interfaces.StartupStore
	DefaultTimeout time.Duration
}

func NewSequencer(opts SequencerOptions) *Sequencer {
	timeout := opts.DefaultTimeout
	if timeout <= 0 {
		timeout = model.DefaultStepTimeout
	}
	return &Sequencer{
		coordinator:    opts.Coordinator,
		registry:       opts.Registry,
		startups:       opts.Startups,
		defaultTimeout: timeout,
	}
}

// RunSequence executes the startup sequence for one distribution and
// returns one result per attempted step, in order. A missing, disabled or
// empty config yields an empty list. The sequence stops at the first
// failed step whose continueOnError is false; the failed step's result is
// the last entry.
func (s *Sequencer) RunSequence(ctx context.Context, distroName string) []model.ActionResult {
	logger := ctxlog.From(ctx)

	cfg, err := s.startups.GetStartupConfig(ctx, distroName)
	if err != nil {
		logger.Warn("failed to load startup config",
			slog.String("distro", distroName),
			slog.String("error", err.Error()),
		)
		return []model.ActionResult{}
	}
	if !cfg.Runnable() {
		return []model.ActionResult{}
	}

	results := make([]model.ActionResult, 0, len(cfg.Actions))
	for _, step := range cfg.Actions {
		res := s.runStep(ctx, step, distroName)
		results = append(results, *res)

		if !res.Success && !step.ContinueOnError {
			logger.Debug("startup sequence aborted",
				slog.String("distro", distroName),
				slog.String("step", step.ID),
				slog.String("error", res.Error),
			)
			break
		}
	}
	return results
}

// RunAll runs the startup sequences of every distribution whose config is
// flagged to run on app start. Results are keyed by distribution name.
func (s *Sequencer) RunAll(ctx context.Context) map[string][]model.ActionResult {
	logger := ctxlog.From(ctx)

	configs, err := s.startups.ListStartupConfigs(ctx)
	if err != nil {
		logger.Warn("failed to list startup configs",
			slog.String("error", err.Error()),
		)
		return map[string][]model.ActionResult{}
	}

	out := make(map[string][]model.ActionResult)
	for _, cfg := range configs {
		if !cfg.RunOnAppStart || !cfg.Enabled {
			continue
		}
		out[cfg.DistroName] = s.RunSequence(ctx, cfg.DistroName)
	}
	return out
}

// runStep races one step against its timeout. The coordinator call keeps
// running in its goroutine after a timeout; this layer just stops waiting.
// Whatever the dispatcher already started cannot be cancelled from here.
func (s *Sequencer) runStep(ctx context.Context, step model.StartupAction, distroName string) *model.ActionResult {
	timeout := step.Timeout()
	if step.TimeoutSeconds <= 0 {
		timeout = s.defaultTimeout
	}

	done := make(chan *model.ActionResult, 1)
	go func() {
		done <- s.execute(ctx, step, distroName)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		res.StepID = step.ID
		return res
	case <-timer.C:
		res := model.FailedResult(domain.ErrTimeout.Error())
		res.StepID = step.ID
		res.Distro = distroName
		return res
	case <-ctx.Done():
		res := model.FailedResult(ctx.Err().Error())
		res.StepID = step.ID
		res.Distro = distroName
		return res
	}
}

// execute resolves the step's effective command source. A set actionId
// wins over the inline command; a dangling reference (the action was
// deleted) degrades to "nothing to run" rather than an error.
func (s *Sequencer) execute(ctx context.Context, step model.StartupAction, distroName string) *model.ActionResult {
	if step.ActionID != "" {
		action, ok := s.registry.Find(step.ActionID)
		if !ok {
			return model.FailedResult("nothing to run: action " + step.ActionID + " no longer exists")
		}
		return s.coordinator.ExecuteAction(ctx, *action, distroName)
	}
	if step.Command != "" {
		return s.coordinator.ExecuteInline(ctx, step.Command, distroName)
	}
	return model.FailedResult("nothing to run: step has no action or command")
}
