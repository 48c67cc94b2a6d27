package model

import "sort"

// ActionIcon references the fixed icon set rendered by clients.
type ActionIcon string

const (
	IconTerminal ActionIcon = "terminal"
	IconPackage  ActionIcon = "package"
	IconService  ActionIcon = "service"
	IconUpdate   ActionIcon = "update"
	IconScript   ActionIcon = "script"
	IconGear     ActionIcon = "gear"
)

// Action is a reusable command definition that can be triggered against one
// or more distributions.
type Action struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Icon    ActionIcon `json:"icon"`
	Command string     `json:"command"`
	Scope   Scope      `json:"scope"`

	ConfirmBeforeRun bool `json:"confirmBeforeRun"`
	ShowOutput       bool `json:"showOutput"`
	RequiresSudo     bool `json:"requiresSudo"`
	RequiresStopped  bool `json:"requiresStopped"`
	RunInTerminal    bool `json:"runInTerminal"`

	// Order is a display sort key only. Execution order of startup
	// sequences is defined by StartupConfig.Actions.
	Order int `json:"order"`
}

// SortActions orders actions for display: Order first, then Name, then ID
// as the final tie-break so the result is stable.
func SortActions(actions []Action) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].Order != actions[j].Order {
			return actions[i].Order < actions[j].Order
		}
		if actions[i].Name != actions[j].Name {
			return actions[i].Name < actions[j].Name
		}
		return actions[i].ID < actions[j].ID
	})
}

// MergeActions unions imported actions into existing ones by ID: a matching
// ID replaces the existing action in place, the rest are appended in
// document order.
func MergeActions(existing, imported []Action) []Action {
	merged := make([]Action, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, a := range merged {
		index[a.ID] = i
	}

	for _, a := range imported {
		if i, ok := index[a.ID]; ok {
			merged[i] = a
			continue
		}
		index[a.ID] = len(merged)
		merged = append(merged, a)
	}
	return merged
}
