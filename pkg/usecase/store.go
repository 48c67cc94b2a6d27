package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

const (
	actionsFile = "actions.json"
	startupFile = "startup.json"
)

// FileStore persists actions and startup configs as JSON files under a
// single directory. It implements both ActionStore and StartupStore and is
// the canonical source of truth: every mutation rewrites the file and
// returns the full collection that was written.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore uses dir, or ~/.config/distup when dir is empty.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		homeDir, _ := os.UserHomeDir()
		dir = filepath.Join(homeDir, ".config", "distup")
	}
	return &FileStore{dir: dir}
}

func (s *FileStore) loadActions() ([]model.Action, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, actionsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Action{}, nil
		}
		return nil, domain.ErrPersistence.Wrap(err)
	}
	doc, err := model.ParseExportDocument(data)
	if err != nil {
		return nil, domain.ErrPersistence.Wrap(err)
	}
	return doc.Actions, nil
}

func (s *FileStore) saveActions(actions []model.Action) error {
	data, err := model.NewExportDocument(actions).Encode()
	if err != nil {
		return domain.ErrPersistence.Wrap(err)
	}
	return s.writeFile(actionsFile, data)
}

func (s *FileStore) loadStartupConfigs() ([]model.StartupConfig, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, startupFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.StartupConfig{}, nil
		}
		return nil, domain.ErrPersistence.Wrap(err)
	}
	var configs []model.StartupConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, domain.ErrPersistence.Wrap(err)
	}
	return configs, nil
}

func (s *FileStore) saveStartupConfigs(configs []model.StartupConfig) error {
	data, err := json.MarshalIndent(configs, "", "  ")
	if err != nil {
		return domain.ErrPersistence.Wrap(err)
	}
	return s.writeFile(startupFile, data)
}

// writeFile writes through a temp file and rename so a crash mid-write
// cannot leave a truncated collection behind.
func (s *FileStore) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return domain.ErrPersistence.Wrap(err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return domain.ErrPersistence.Wrap(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return domain.ErrPersistence.Wrap(err)
	}
	return nil
}

func (s *FileStore) ListActions(ctx context.Context) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadActions()
}

func (s *FileStore) AddAction(ctx context.Context, action model.Action) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action.ID == "" {
		return nil, domain.ErrPersistence.Wrap(goerr.New("action id must not be empty"))
	}
	if !action.Scope.Valid() {
		return nil, domain.ErrPersistence.Wrap(goerr.New("action " + action.ID + " has no valid scope"))
	}
	actions, err := s.loadActions()
	if err != nil {
		return nil, err
	}
	for _, a := range actions {
		if a.ID == action.ID {
			return nil, domain.ErrPersistence.Wrap(goerr.New("duplicate action id: " + action.ID))
		}
	}
	actions = append(actions, action)
	if err := s.saveActions(actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (s *FileStore) UpdateAction(ctx context.Context, action model.Action) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !action.Scope.Valid() {
		return nil, domain.ErrPersistence.Wrap(goerr.New("action " + action.ID + " has no valid scope"))
	}
	actions, err := s.loadActions()
	if err != nil {
		return nil, err
	}
	for i, a := range actions {
		if a.ID == action.ID {
			actions[i] = action
			if err := s.saveActions(actions); err != nil {
				return nil, err
			}
			return actions, nil
		}
	}
	return nil, domain.ErrPersistence.Wrap(goerr.New("unknown action id: " + action.ID))
}

func (s *FileStore) DeleteAction(ctx context.Context, id string) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actions, err := s.loadActions()
	if err != nil {
		return nil, err
	}
	kept := actions[:0]
	found := false
	for _, a := range actions {
		if a.ID == id {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return nil, domain.ErrPersistence.Wrap(goerr.New("unknown action id: " + id))
	}
	if err := s.saveActions(kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *FileStore) ExportActions(ctx context.Context) (*model.ExportDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	actions, err := s.loadActions()
	if err != nil {
		return nil, err
	}
	return model.NewExportDocument(actions), nil
}

func (s *FileStore) ImportActions(ctx context.Context, doc *model.ExportDocument, mode model.MergeMode) ([]model.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next []model.Action
	switch mode {
	case model.MergeModeReplace:
		next = make([]model.Action, len(doc.Actions))
		copy(next, doc.Actions)
	case model.MergeModeMerge:
		existing, err := s.loadActions()
		if err != nil {
			return nil, err
		}
		next = model.MergeActions(existing, doc.Actions)
	default:
		return nil, domain.ErrPersistence.Wrap(goerr.New("unknown merge mode: " + string(mode)))
	}
	if err := s.saveActions(next); err != nil {
		return nil, err
	}
	return next, nil
}

func (s *FileStore) ListStartupConfigs(ctx context.Context) ([]model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadStartupConfigs()
}

func (s *FileStore) GetStartupConfig(ctx context.Context, distroName string) (*model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.loadStartupConfigs()
	if err != nil {
		return nil, err
	}
	for i := range configs {
		if configs[i].DistroName == distroName {
			cfg := configs[i]
			return &cfg, nil
		}
	}
	return nil, nil
}

func (s *FileStore) SaveStartupConfig(ctx context.Context, config model.StartupConfig) ([]model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if config.DistroName == "" {
		return nil, domain.ErrPersistence.Wrap(goerr.New("startup config needs a distro name"))
	}
	configs, err := s.loadStartupConfigs()
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range configs {
		if configs[i].DistroName == config.DistroName {
			configs[i] = config
			replaced = true
			break
		}
	}
	if !replaced {
		configs = append(configs, config)
	}
	if err := s.saveStartupConfigs(configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// DeleteStartupConfig is idempotent: deleting an absent config returns the
// unchanged collection.
func (s *FileStore) DeleteStartupConfig(ctx context.Context, distroName string) ([]model.StartupConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	configs, err := s.loadStartupConfigs()
	if err != nil {
		return nil, err
	}
	kept := configs[:0]
	for _, c := range configs {
		if c.DistroName == distroName {
			continue
		}
		kept = append(kept, c)
	}
	if err := s.saveStartupConfigs(kept); err != nil {
		return nil, err
	}
	return kept, nil
}
