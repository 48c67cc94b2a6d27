package model

import "time"

// ActionResult is the settled outcome of one execution request. Failures
// are data, not errors: the orchestration layers never propagate dispatch
// failures as Go errors to their callers.
type ActionResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`

	ActionID     string        `json:"actionId,omitempty"`
	StepID       string        `json:"stepId,omitempty"`
	Distro       string        `json:"distro,omitempty"`
	InvocationID string        `json:"invocationId,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// FailedResult builds a failure outcome with empty output.
func FailedResult(msg string) *ActionResult {
	return &ActionResult{Success: false, Output: "", Error: msg}
}

// ExecutionPhase names the coordinator's execution state.
type ExecutionPhase string

const (
	ExecutionIdle    ExecutionPhase = "idle"
	ExecutionRunning ExecutionPhase = "running"
)

// ExecutionState is the coordinator-owned replacement for an ambient
// "isExecuting" flag: Idle, or Running with the most recent invocation ID.
type ExecutionState struct {
	Phase        ExecutionPhase
	InvocationID string
}

func (s ExecutionState) Executing() bool {
	return s.Phase == ExecutionRunning
}

// ExecuteRequest is what crosses the dispatcher boundary: a fully
// interpolated command plus routing metadata. Credential is forwarded for
// this invocation only and must not be retained by any layer.
type ExecuteRequest struct {
	ActionID     string
	Distro       string
	Command      string
	InvocationID string
	Credential   *Credential
}

// Credential carries a sudo-style secret across the dispatch boundary.
type Credential struct {
	Secret string
}

// String keeps secrets out of logs and error messages.
func (c Credential) String() string {
	return "[REDACTED]"
}
