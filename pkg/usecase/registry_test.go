package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/distup/pkg/domain"
	"github.com/m-mizutani/distup/pkg/domain/model"
	"github.com/m-mizutani/distup/pkg/usecase"
)

func newTestRegistry(t *testing.T, seed ...model.Action) (*usecase.Registry, *memStore) {
	t.Helper()
	store := &memStore{actions: seed}
	registry := usecase.NewRegistry(store)
	gt.NoError(t, registry.Load(context.Background()))
	return registry, store
}

func TestRegistryCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("successful mutation adopts canonical collection", func(t *testing.T) {
		registry, _ := newTestRegistry(t)
		gt.NoError(t, registry.Add(ctx, model.Action{ID: "1", Name: "update", Scope: model.AllScope()}))
		gt.NoError(t, registry.Add(ctx, model.Action{ID: "2", Name: "clean", Scope: model.AllScope()}))

		actions := registry.Actions()
		gt.Equal(t, 2, len(actions))

		gt.NoError(t, registry.Delete(ctx, "1"))
		actions = registry.Actions()
		gt.Equal(t, 1, len(actions))
		gt.Equal(t, "2", actions[0].ID)
	})

	t.Run("failed mutation leaves collection unchanged", func(t *testing.T) {
		registry, store := newTestRegistry(t, model.Action{ID: "1", Name: "update"})

		store.failOnce(goerr.New("store is down"))
		err := registry.Add(ctx, model.Action{ID: "2", Name: "clean"})
		gt.Error(t, err)
		gt.True(t, domain.ErrPersistence.Is(err))

		gt.Equal(t, 1, len(registry.Actions()))
		gt.Error(t, registry.LastError())
	})

	t.Run("next success clears last error", func(t *testing.T) {
		registry, store := newTestRegistry(t)

		store.failOnce(goerr.New("store is down"))
		gt.Error(t, registry.Load(ctx))
		gt.Error(t, registry.LastError())

		gt.NoError(t, registry.Load(ctx))
		gt.Nil(t, registry.LastError())
	})

	t.Run("update replaces the matching action", func(t *testing.T) {
		registry, _ := newTestRegistry(t, model.Action{ID: "1", Name: "old", Command: "x"})

		gt.NoError(t, registry.Update(ctx, model.Action{ID: "1", Name: "new", Command: "y"}))
		action, ok := registry.Find("1")
		gt.True(t, ok)
		gt.Equal(t, "new", action.Name)
		gt.Equal(t, "y", action.Command)
	})

	t.Run("find falls back to exact name", func(t *testing.T) {
		registry, _ := newTestRegistry(t, model.Action{ID: "abc", Name: "update all"})

		_, ok := registry.Find("update all")
		gt.True(t, ok)
		_, ok = registry.Find("Update All")
		gt.False(t, ok)
	})

	t.Run("actions returns a display-sorted copy", func(t *testing.T) {
		registry, _ := newTestRegistry(t,
			model.Action{ID: "b", Name: "beta", Order: 2},
			model.Action{ID: "a", Name: "alpha", Order: 1},
		)
		actions := registry.Actions()
		gt.Equal(t, "a", actions[0].ID)

		actions[0].Name = "mutated"
		fresh := registry.Actions()
		gt.Equal(t, "alpha", fresh[0].Name)
	})
}

// gatedStore blocks ListActions until released, to observe the loading
// flag mid-call.
type gatedStore struct {
	*memStore
	gate chan struct{}
}

func (s *gatedStore) ListActions(ctx context.Context) ([]model.Action, error) {
	<-s.gate
	return s.memStore.ListActions(ctx)
}

func TestRegistryLoadingFlag(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{memStore: &memStore{}, gate: make(chan struct{})}
	registry := usecase.NewRegistry(store)

	gt.False(t, registry.Loading())

	done := make(chan error, 1)
	go func() {
		done <- registry.Load(ctx)
	}()

	// The flag goes up while the store call is in flight.
	deadline := time.After(time.Second)
	for !registry.Loading() {
		select {
		case <-deadline:
			t.Fatal("loading flag never went up")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(store.gate)
	gt.NoError(t, <-done)
	gt.False(t, registry.Loading())
}

func TestRegistryScopeFiltering(t *testing.T) {
	registry, _ := newTestRegistry(t,
		model.Action{ID: "1", Name: "everywhere", Scope: model.AllScope()},
		model.Action{ID: "2", Name: "debian only", Scope: model.SpecificScope("Debian")},
		model.Action{ID: "3", Name: "ubuntus", Scope: model.PatternScope("^Ubuntu-")},
		model.Action{ID: "4", Name: "broken", Scope: model.PatternScope("(")},
	)

	t.Run("filters by scope", func(t *testing.T) {
		forUbuntu := registry.ActionsFor("Ubuntu-22.04")
		gt.Equal(t, 2, len(forUbuntu))

		forDebian := registry.ActionsFor("Debian")
		gt.Equal(t, 2, len(forDebian))

		forFedora := registry.ActionsFor("Fedora")
		gt.Equal(t, 1, len(forFedora))
		gt.Equal(t, "1", forFedora[0].ID)
	})
}

func TestRegistryImportExport(t *testing.T) {
	ctx := context.Background()

	seed := []model.Action{
		{ID: "1", Name: "update", Command: "apt update", Scope: model.AllScope(), Order: 1},
		{ID: "2", Name: "clean", Command: "apt clean", Scope: model.SpecificScope("Debian"), Order: 2},
	}

	t.Run("export then replace-import is identity", func(t *testing.T) {
		registry, _ := newTestRegistry(t, seed...)

		doc, err := registry.ExportAll(ctx)
		gt.NoError(t, err)
		data, err := doc.Encode()
		gt.NoError(t, err)

		gt.NoError(t, registry.ImportAll(ctx, data, model.MergeModeReplace))
		after := registry.Actions()
		gt.Equal(t, 2, len(after))
		gt.Equal(t, seed[0], after[0])
		gt.Equal(t, seed[1], after[1])
	})

	t.Run("merge import replaces matching ids without duplicates", func(t *testing.T) {
		registry, _ := newTestRegistry(t, seed...)

		doc := model.NewExportDocument([]model.Action{
			{ID: "2", Name: "deep clean", Command: "apt autoclean", Scope: model.AllScope()},
			{ID: "3", Name: "upgrade", Command: "apt upgrade", Scope: model.AllScope()},
		})
		data, err := doc.Encode()
		gt.NoError(t, err)

		gt.NoError(t, registry.ImportAll(ctx, data, model.MergeModeMerge))
		after := registry.Actions()
		gt.Equal(t, 3, len(after))

		action, ok := registry.Find("2")
		gt.True(t, ok)
		gt.Equal(t, "deep clean", action.Name)
	})

	t.Run("malformed document fails atomically", func(t *testing.T) {
		registry, store := newTestRegistry(t, seed...)
		callsBefore := store.calls

		err := registry.ImportAll(ctx, []byte(`{"not":"a document"}`), model.MergeModeReplace)
		gt.Error(t, err)
		gt.True(t, domain.ErrImport.Is(err))

		// Nothing reached the store, nothing changed locally.
		gt.Equal(t, callsBefore, store.calls)
		gt.Equal(t, 2, len(registry.Actions()))
	})

	t.Run("scope-less actions are rejected before persistence", func(t *testing.T) {
		registry, store := newTestRegistry(t, seed...)
		callsBefore := store.calls

		data := []byte(`{"version":1,"actions":[{"id":"1","name":"no scope","command":"echo hi"}]}`)
		err := registry.ImportAll(ctx, data, model.MergeModeMerge)
		gt.Error(t, err)
		gt.True(t, domain.ErrImport.Is(err))
		gt.Equal(t, callsBefore, store.calls)

		// The collection stays loadable afterwards.
		gt.NoError(t, registry.Load(ctx))
		gt.Equal(t, 2, len(registry.Actions()))
	})

	t.Run("replace import wholly supersedes", func(t *testing.T) {
		registry, _ := newTestRegistry(t, seed...)

		doc := model.NewExportDocument([]model.Action{{ID: "9", Name: "only one", Scope: model.AllScope()}})
		data, err := doc.Encode()
		gt.NoError(t, err)

		gt.NoError(t, registry.ImportAll(ctx, data, model.MergeModeReplace))
		after := registry.Actions()
		gt.Equal(t, 1, len(after))
		gt.Equal(t, "9", after[0].ID)
	})
}
