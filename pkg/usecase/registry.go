package usecase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/interfaces"
	"github.com/m-mizutani/distup/pkg/domain/model"
)

// Registry owns the in-memory action collection and delegates persistence
// to the store. The store's response is the source of truth: every
// successful mutation replaces the whole collection, and a failed call
// leaves the collection untouched.
type Registry struct {
	store interfaces.ActionStore

	mu      sync.RWMutex
	actions []model.Action
	loading bool
	lastErr error
}

func NewRegistry(store interfaces.ActionStore) *Registry {
	return &Registry{store: store}
}

// Actions returns a display-sorted copy of the current collection.
func (r *Registry) Actions() []model.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Action, len(r.actions))
	copy(out, r.actions)
	model.SortActions(out)
	return out
}

// ActionsFor filters the collection to actions whose scope covers the
// distribution.
func (r *Registry) ActionsFor(distroName string) []model.Action {
	all := r.Actions()
	out := make([]model.Action, 0, len(all))
	for _, a := range all {
		if a.Scope.Matches(distroName) {
			out = append(out, a)
		}
	}
	return out
}

// Find looks up an action by ID, falling back to an exact name match.
func (r *Registry) Find(idOrName string) (*model.Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.actions {
		if r.actions[i].ID == idOrName {
			a := r.actions[i]
			return &a, true
		}
	}
	for i := range r.actions {
		if r.actions[i].Name == idOrName {
			a := r.actions[i]
			return &a, true
		}
	}
	return nil, false
}

// Loading reports whether a store call is in flight, so readers can tell
// stale data from known-fresh empty data.
func (r *Registry) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// LastError returns the error recorded by the most recent store call, or
// nil if it succeeded.
func (r *Registry) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Registry) beginCall() {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()
}

func (r *Registry) endCall(actions []model.Action, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading = false
	r.lastErr = err
	if err == nil && actions != nil {
		r.actions = actions
	}
}

// Load refreshes the collection from the store.
func (r *Registry) Load(ctx context.Context) error {
	r.beginCall()
	actions, err := r.store.ListActions(ctx)
	if err != nil {
		err = domain.ErrPersistence.Wrap(err)
		r.endCall(nil, err)
		return err
	}
	r.endCall(actions, nil)
	return nil
}

// Add persists a new action and adopts the canonical collection.
func (r *Registry) Add(ctx context.Context, action model.Action) error {
	r.beginCall()
	actions, err := r.store.AddAction(ctx, action)
	if err != nil {
		err = domain.ErrPersistence.Wrap(err)
		r.endCall(nil, err)
		return err
	}
	ctxlog.From(ctx).Debug("action added", slog.String("id", action.ID))
	r.endCall(actions, nil)
	return nil
}

// Update persists changes to an existing action.
func (r *Registry) Update(ctx context.Context, action model.Action) error {
	r.beginCall()
	actions, err := r.store.UpdateAction(ctx, action)
	if err != nil {
		err = domain.ErrPersistence.Wrap(err)
		r.endCall(nil, err)
		return err
	}
	r.endCall(actions, nil)
	return nil
}

// Delete removes an action. Startup steps referencing the ID keep their
// reference; it simply resolves to nothing from then on.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.beginCall()
	actions, err := r.store.DeleteAction(ctx, id)
	if err != nil {
		err = domain.ErrPersistence.Wrap(err)
		r.endCall(nil, err)
		return err
	}
	ctxlog.From(ctx).Debug("action deleted", slog.String("id", id))
	r.endCall(actions, nil)
	return nil
}

// ExportAll produces the versioned document for the full collection.
func (r *Registry) ExportAll(ctx context.Context) (*model.ExportDocument, error) {
	r.beginCall()
	doc, err := r.store.ExportActions(ctx)
	if err != nil {
		err = domain.ErrPersistence.Wrap(err)
		r.endCall(nil, err)
		return nil, err
	}
	r.endCall(doc.Actions, nil)
	return doc, nil
}

// ImportAll validates raw document bytes and applies them in the given
// merge mode. A malformed document fails before anything is written, so
// the import is atomic.
func (r *Registry) ImportAll(ctx context.Context, data []byte, mode model.MergeMode) error {
	doc, err := model.ParseExportDocument(data)
	if err != nil {
		err = domain.ErrImport.Wrap(err)
		r.mu.Lock()
		r.lastErr = err
		r.mu.Unlock()
		return err
	}

	r.beginCall()
	actions, err := r.store.ImportActions(ctx, doc, mode)
	if err != nil {
		err = domain.ErrPersistence.Wrap(err)
		r.endCall(nil, err)
		return err
	}
	ctxlog.From(ctx).Debug("actions imported",
		slog.Int("count", len(doc.Actions)),
		slog.String("mode", string(mode)),
	)
	r.endCall(actions, nil)
	return nil
}
