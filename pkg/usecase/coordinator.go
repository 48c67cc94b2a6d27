package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/interfaces"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

// Coordinator is the single-flight gate around "run this one action now".
// It enforces the requires-stopped precondition, obtains a credential for
// sudo actions, interpolates the command template, and hands the result to
// the dispatcher. It never returns a Go error: every failure settles into
// a structured ActionResult.
//
// Concurrency: calls are accepted while another is in flight; State()
// tells interactive callers not to trigger a second one. Results are keyed
// by invocation ID so overlapping calls cannot clobber each other, and
// LastResult() remains as the convenience view of the most recently
// settled invocation.
type Coordinator struct {
	dispatcher  interfaces.CommandDispatcher
	distros     interfaces.DistroService
	credentials interfaces.CredentialPrompt
	registry    *Registry

	mu       sync.Mutex
	inflight int
	state    model.ExecutionState
	results  map[string]*model.ActionResult
	lastID   string
}

type CoordinatorOptions struct {
	Dispatcher  interfaces.CommandDispatcher
	Distros     interfaces.DistroService
	Credentials interfaces.CredentialPrompt
	Registry    *Registry
}

func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	return &Coordinator{
		dispatcher:  opts.Dispatcher,
		distros:     opts.Distros,
		credentials: opts.Credentials,
		registry:    opts.Registry,
		state:       model.ExecutionState{Phase: model.ExecutionIdle},
		results:     map[string]*model.ActionResult{},
	}
}

// State returns the current execution state value.
func (c *Coordinator) State() model.ExecutionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsExecuting reports whether any invocation is in flight.
func (c *Coordinator) IsExecuting() bool {
	return c.State().Executing()
}

// Result returns the settled outcome for an invocation ID, if known.
func (c *Coordinator) Result(invocationID string) (*model.ActionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[invocationID]
	return res, ok
}

// LastResult returns the most recently settled outcome, if any.
func (c *Coordinator) LastResult() (*model.ActionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.results[c.lastID]
	return res, ok
}

// ExecuteOne resolves an action by ID or name and runs it against the
// distribution.
func (c *Coordinator) ExecuteOne(ctx context.Context, idOrName, distroName string) *model.ActionResult {
	action, ok := c.registry.Find(idOrName)
	if !ok {
		invocationID := uuid.NewString()
		c.begin(invocationID)
		res := model.FailedResult("unknown action: " + idOrName)
		res.Distro = distroName
		res.InvocationID = invocationID
		return c.settle(invocationID, res)
	}
	return c.ExecuteAction(ctx, *action, distroName)
}

// ExecuteInline runs a raw command template with no action policy flags.
func (c *Coordinator) ExecuteInline(ctx context.Context, command, distroName string) *model.ActionResult {
	return c.ExecuteAction(ctx, model.Action{Command: command}, distroName)
}

// ExecuteAction runs one action against one distribution. The precondition
// order is fixed: state check, credential, interpolation, dispatch.
func (c *Coordinator) ExecuteAction(ctx context.Context, action model.Action, distroName string) *model.ActionResult {
	logger := ctxlog.From(ctx)
	invocationID := uuid.NewString()
	c.begin(invocationID)
	started := time.Now()

	finish := func(res *model.ActionResult) *model.ActionResult {
		res.ActionID = action.ID
		res.Distro = distroName
		res.InvocationID = invocationID
		res.Duration = time.Since(started)
		return c.settle(invocationID, res)
	}

	if action.RequiresStopped {
		running, err := c.distros.IsRunning(ctx, distroName)
		if err != nil {
			logger.Warn("failed to check distro state",
				slog.String("distro", distroName),
				slog.String("error", err.Error()),
			)
			return finish(model.FailedResult("failed to check distro state: " + err.Error()))
		}
		if running {
			logger.Debug("refusing execution, distro is running",
				slog.String("distro", distroName),
				slog.String("action", action.ID),
			)
			err := domain.ErrPrecondition.Wrap(goerr.New("distro is running: " + distroName))
			return finish(model.FailedResult(err.Error()))
		}
	}

	var cred *model.Credential
	if action.RequiresSudo {
		if c.credentials == nil {
			return finish(model.FailedResult("action requires sudo but no credential prompt is available"))
		}
		obtained, err := c.credentials.Prompt(ctx, action, distroName)
		if err != nil {
			return finish(model.FailedResult("credential not provided: " + err.Error()))
		}
		cred = obtained
	}

	dc, err := c.distros.Context(ctx, distroName)
	if err != nil {
		return finish(model.FailedResult("failed to resolve distro context: " + err.Error()))
	}

	req := model.ExecuteRequest{
		ActionID:     action.ID,
		Distro:       distroName,
		Command:      Interpolate(action.Command, dc),
		InvocationID: invocationID,
		Credential:   cred,
	}
	// Forwarded once; nothing below holds onto the secret.
	cred = nil

	if action.RunInTerminal {
		if err := c.dispatcher.RunActionInTerminal(ctx, req); err != nil {
			return finish(&model.ActionResult{Success: false, Output: "", Error: err.Error()})
		}
		return finish(&model.ActionResult{Success: true, Output: ""})
	}

	res, err := c.dispatcher.ExecuteAction(ctx, req)
	if err != nil {
		logger.Debug("dispatch failed",
			slog.String("action", action.ID),
			slog.String("distro", distroName),
			slog.String("error", err.Error()),
		)
		return finish(&model.ActionResult{Success: false, Output: "", Error: err.Error()})
	}
	return finish(res)
}

func (c *Coordinator) begin(invocationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight++
	c.state = model.ExecutionState{Phase: model.ExecutionRunning, InvocationID: invocationID}
}

func (c *Coordinator) settle(invocationID string, res *model.ActionResult) *model.ActionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		c.inflight--
	}
	if c.inflight == 0 {
		c.state = model.ExecutionState{Phase: model.ExecutionIdle}
	}
	c.results[invocationID] = res
	c.lastID = invocationID
	return res
}
