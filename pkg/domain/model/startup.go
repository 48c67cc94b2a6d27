package model

import "time"

// DefaultStepTimeout applies when a startup step has no explicit timeout.
const DefaultStepTimeout = 30 * time.Second

// StartupAction is one step of a distribution's boot sequence. Exactly one
// of ActionID or Command is the effective command source; when ActionID is
// set the referenced action's template wins and Command is ignored.
type StartupAction struct {
	ID       string `json:"id"`
	ActionID string `json:"actionId,omitempty"`
	Command  string `json:"command,omitempty"`

	// ContinueOnError keeps the sequence going after this step fails
	// (timeouts included). When false, a failure aborts the remainder.
	ContinueOnError bool `json:"continueOnError"`

	// TimeoutSeconds bounds the step; zero falls back to
	// DefaultStepTimeout.
	TimeoutSeconds int `json:"timeoutSeconds"`
}

// Timeout returns the effective per-step deadline.
func (s StartupAction) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return DefaultStepTimeout
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// StartupConfig holds the ordered boot sequence for one distribution.
// DistroName is the natural key: at most one config per distribution.
type StartupConfig struct {
	DistroName string          `json:"distroName"`
	Actions    []StartupAction `json:"actions"`

	RunOnAppStart bool `json:"runOnAppStart"`
	Enabled       bool `json:"enabled"`
}

// Runnable reports whether the sequence is eligible to run at all.
func (c *StartupConfig) Runnable() bool {
	return c != nil && c.Enabled && len(c.Actions) > 0
}
