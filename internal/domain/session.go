package domain

import "time"

// SessionState is the tagged state of the command lifecycle machine.
type SessionState string

const (
	StateReceived             SessionState = "received"
	StateTranslating          SessionState = "translating"
	StateClassified           SessionState = "classified"
	StateAwaitingConfirmation SessionState = "awaiting_confirmation"
	StateConfirmed            SessionState = "confirmed"
	StateRejected             SessionState = "rejected"
	StateExecuting            SessionState = "executing"
	StateRecordedSuccess      SessionState = "recorded_success"
	StateRecordedFailure      SessionState = "recorded_failure"
)

// Terminal reports whether no further transition occurs for the request.
func (s SessionState) Terminal() bool {
	switch s {
	case StateRejected, StateRecordedSuccess, StateRecordedFailure:
		return true
	}
	return false
}

// CommandRequest captures one user turn. It is immutable once execution
// starts and owned exclusively by the pipeline run processing it.
type CommandRequest struct {
	Input      string
	Direct     bool
	WorkingDir string
	ContextTag string
	CreatedAt  time.Time
}

// ExecutionResult wraps details reported by the command executor.
type ExecutionResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	TimedOut bool
}

// SessionResult is the outcome of one pipeline run, returned to the CLI.
type SessionResult struct {
	State         SessionState
	Command       string
	Assessment    RiskAssessment
	Entry         HistoryEntry
	Execution     *ExecutionResult
	FromCache     bool
	LoggingFailed bool
	Message       string
}

// SessionConfig carries per-session policy into the pipeline constructor so
// concurrent sessions do not share mutable state.
type SessionConfig struct {
	TranslateTimeout time.Duration
	ExecTimeout      time.Duration
	ConfirmTimeout   time.Duration
	SkipSafeConfirm  bool
	WorkingDir       string
}
