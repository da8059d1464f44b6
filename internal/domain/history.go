package domain

import "time"

// Outcome is the terminal result recorded for a command request.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailure  Outcome = "failure"
	OutcomeRejected Outcome = "rejected"
	OutcomeError    Outcome = "error"
)

// HistoryEntry is the append-only persisted record of one command request.
// Invariants: OutcomeRejected implies Command may be empty and ExitCode nil;
// OutcomeSuccess implies *ExitCode == 0. Entries are never updated after
// Record, only removed wholesale by Clear.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Input      string    `json:"input"`
	Command    string    `json:"command"`
	RiskTier   RiskTier  `json:"risk_tier"`
	Outcome    Outcome   `json:"outcome"`
	ExitCode   *int      `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
	WorkingDir string    `json:"working_dir"`
	ContextTag string    `json:"context_tag"`
	CreatedAt  time.Time `json:"created_at"`
}

// StatsWindow restricts aggregate computation to entries at or after Since.
// The zero value covers the full history.
type StatsWindow struct {
	Since time.Time
}

// CommandCount pairs a command string with its usage count.
type CommandCount struct {
	Command string
	Count   int
}

// CommandUsage extends CommandCount with recency, used by suggestion ranking.
type CommandUsage struct {
	Command  string
	Count    int
	LastUsed time.Time
}

// HistoryStats are derived aggregates, recomputed on demand and never cached
// across writes.
type HistoryStats struct {
	Total          int
	Executed       int
	SuccessRate    float64
	MeanDurationMS float64
	TopCommands    []CommandCount
	TierCounts     map[RiskTier]int
	TagCounts      map[string]int
}
