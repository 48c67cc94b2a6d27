package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

// memStore is an in-memory stand-in for the persistence boundary. It keeps
// the canonical-list contract: every mutation returns a copy of the full
// collection.
type memStore struct {
	mu       sync.Mutex
	actions  []model.Action
	startups []model.StartupConfig
	failNext error
	calls    int
}

func (s *memStore) failOnce(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *memStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *memStore) snapshot() []model.Action {
	out := make([]model.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

func (s *memStore) ListActions(ctx context.Context) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

func (s *memStore) AddAction(ctx context.Context, action model.Action) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	s.actions = append(s.actions, action)
	return s.snapshot(), nil
}

func (s *memStore) UpdateAction(ctx context.Context, action model.Action) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	for i := range s.actions {
		if s.actions[i].ID == action.ID {
			s.actions[i] = action
			return s.snapshot(), nil
		}
	}
	return nil, goerr.New("unknown action id: " + action.ID)
}

func (s *memStore) DeleteAction(ctx context.Context, id string) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	kept := s.actions[:0]
	for _, a := range s.actions {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.actions = kept
	return s.snapshot(), nil
}

func (s *memStore) ExportActions(ctx context.Context) (*model.ExportDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	return model.NewExportDocument(s.actions), nil
}

func (s *memStore) ImportActions(ctx context.Context, doc *model.ExportDocument, mode model.MergeMode) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	switch mode {
	case model.MergeModeReplace:
		s.actions = make([]model.Action, len(doc.Actions))
		copy(s.actions, doc.Actions)
	case model.MergeModeMerge:
		s.actions = model.MergeActions(s.actions, doc.Actions)
	}
	return s.snapshot(), nil
}

func (s *memStore) ListStartupConfigs(ctx context.Context) ([]model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	out := make([]model.StartupConfig, len(s.startups))
	copy(out, s.startups)
	return out, nil
}

func (s *memStore) GetStartupConfig(ctx context.Context, distroName string) (*model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}
	for i := range s.startups {
		if s.startups[i].DistroName == distroName {
			cfg := s.startups[i]
			return &cfg, nil
		}
	}
	return nil, nil
}

func (s *memStore) SaveStartupConfig(ctx context.Context, config model.StartupConfig) ([]model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.startups {
		if s.startups[i].DistroName == config.DistroName {
			s.startups[i] = config
			return s.startups, nil
		}
	}
	s.startups = append(s.startups, config)
	return s.startups, nil
}

func (s *memStore) DeleteStartupConfig(ctx context.Context, distroName string) ([]model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.startups[:0]
	for _, c := range s.startups {
		if c.DistroName != distroName {
			kept = append(kept, c)
		}
	}
	s.startups = kept
	return s.startups, nil
}

// mockDispatcher records dispatched requests and replies per a script.
type mockDispatcher struct {
	mu       sync.Mutex
	requests []model.ExecuteRequest
	// respond decides the outcome of a request. Nil means echo success.
	respond func(req model.ExecuteRequest) (*model.ActionResult, error)
	// delay simulates a slow executor.
	delay time.Duration
}

func (d *mockDispatcher) ExecuteAction(ctx context.Context, req model.ExecuteRequest) (*model.ActionResult, error) {
	d.mu.Lock()
	d.requests = append(d.requests, req)
	respond := d.respond
	delay := d.delay
	d.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if respond != nil {
		return respond(req)
	}
	return &model.ActionResult{Success: true, Output: req.Command}, nil
}

func (d *mockDispatcher) RunActionInTerminal(ctx context.Context, req model.ExecuteRequest) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.requests = append(d.requests, req)
	return nil
}

func (d *mockDispatcher) recorded() []model.ExecuteRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.ExecuteRequest, len(d.requests))
	copy(out, d.requests)
	return out
}

// mockDistros reports fixed state and context values.
type mockDistros struct {
	running map[string]bool
	ctxErr  error
}

func (m *mockDistros) List(ctx context.Context) ([]model.Distro, error) {
	var out []model.Distro
	for name, running := range m.running {
		state := model.DistroStopped
		if running {
			state = model.DistroRunning
		}
		out = append(out, model.Distro{Name: name, State: state})
	}
	return out, nil
}

func (m *mockDistros) IsRunning(ctx context.Context, distroName string) (bool, error) {
	return m.running[distroName], nil
}

func (m *mockDistros) Context(ctx context.Context, distroName string) (model.DistroContext, error) {
	if m.ctxErr != nil {
		return model.DistroContext{}, m.ctxErr
	}
	return model.DistroContext{
		Name:    distroName,
		Home:    "/home/alice",
		User:    "alice",
		WinHome: "/mnt/c/Users/alice",
	}, nil
}

// mockCredentials hands out a fixed secret and counts prompts.
type mockCredentials struct {
	mu      sync.Mutex
	secret  string
	err     error
	prompts int
}

func (m *mockCredentials) Prompt(ctx context.Context, action model.Action, distroName string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts++
	if m.err != nil {
		return nil, m.err
	}
	return &model.Credential{Secret: m.secret}, nil
}
