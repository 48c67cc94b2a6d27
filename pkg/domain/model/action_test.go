package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/distup/pkg/domain/model"
)

func TestSortActions(t *testing.T) {
	actions := []model.Action{
		{ID: "c", Name: "zeta", Order: 1},
		{ID: "a", Name: "alpha", Order: 2},
		{ID: "b", Name: "alpha", Order: 1},
	}
	model.SortActions(actions)

	gt.Equal(t, "b", actions[0].ID) // order 1, name alpha
	gt.Equal(t, "c", actions[1].ID) // order 1, name zeta
	gt.Equal(t, "a", actions[2].ID) // order 2
}

func TestMergeActions(t *testing.T) {
	existing := []model.Action{
		{ID: "1", Name: "update", Command: "apt update"},
		{ID: "2", Name: "upgrade", Command: "apt upgrade"},
	}

	t.Run("matching id replaces in place", func(t *testing.T) {
		merged := model.MergeActions(existing, []model.Action{
			{ID: "2", Name: "full upgrade", Command: "apt full-upgrade"},
		})
		gt.Equal(t, 2, len(merged))
		gt.Equal(t, "update", merged[0].Name)
		gt.Equal(t, "full upgrade", merged[1].Name)
		gt.Equal(t, "apt full-upgrade", merged[1].Command)
	})

	t.Run("new ids are appended in document order", func(t *testing.T) {
		merged := model.MergeActions(existing, []model.Action{
			{ID: "4", Name: "fourth"},
			{ID: "3", Name: "third"},
		})
		gt.Equal(t, 4, len(merged))
		gt.Equal(t, "4", merged[2].ID)
		gt.Equal(t, "3", merged[3].ID)
	})

	t.Run("no duplicate ids after merge", func(t *testing.T) {
		merged := model.MergeActions(existing, []model.Action{
			{ID: "1", Name: "replaced"},
			{ID: "3", Name: "new"},
		})
		seen := map[string]int{}
		for _, a := range merged {
			seen[a.ID]++
		}
		for id, count := range seen {
			if count != 1 {
				t.Errorf("id %s appears %d times", id, count)
			}
		}
	})

	t.Run("input slices are not mutated", func(t *testing.T) {
		_ = model.MergeActions(existing, []model.Action{{ID: "1", Name: "replaced"}})
		gt.Equal(t, "update", existing[0].Name)
	})
}
