// Package ports defines the interfaces between the application core and
// external adapters. The pipeline and ranker depend only on these
// abstractions; concrete implementations live in the infrastructure layer.
package ports

import (
	"context"

	"github.com/llmsh/llmsh/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.llmsh/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Translator converts natural-language input into a candidate shell command.
// Implementations must honor ctx cancellation and deadlines; failures are
// reported as *domain.TranslationError.
type Translator interface {
	Name() string
	Translate(ctx context.Context, input string, snapshot domain.ContextSnapshot) (string, error)
}

// RiskClassifier evaluates a candidate command against the rule table.
// Classify is total: it never fails, and unclassifiable or empty input
// yields a safe assessment with no triggers.
type RiskClassifier interface {
	Classify(command string) domain.RiskAssessment
}

// CommandExecutor runs a confirmed command in the configured shell.
// A non-zero exit is reported in the result, not as an error; errors are
// reserved for *domain.ExecutorFault (spawn failure, timeout, signal death).
type CommandExecutor interface {
	Run(ctx context.Context, command, dir string) (domain.ExecutionResult, error)
}

// ContextDetector inspects a working directory for project markers and
// returns descriptive tags. Snapshot additionally captures the shell, user
// and top-level file listing handed to the translator. Pure read-only
// filesystem inspection.
type ContextDetector interface {
	Detect(cwd string) []string
	Snapshot(cwd string) domain.ContextSnapshot
}

// ConfirmationPrompter gathers explicit user approval before execution.
// attempt is 1-based; the pipeline calls Confirm twice for assessments that
// require double confirmation.
type ConfirmationPrompter interface {
	Confirm(assessment domain.RiskAssessment, command string, attempt int) (bool, error)
	Enabled() bool
}

// HistoryStore owns the durable command log and its derived analytics.
// Record must be synchronously committed before returning; Clear is a single
// atomic operation. Storage faults are reported as *domain.StorageError.
type HistoryStore interface {
	Record(entry domain.HistoryEntry) error
	Recent(limit int) ([]domain.HistoryEntry, error)
	Search(term string, limit int) ([]domain.HistoryEntry, error)
	Stats(window domain.StatsWindow) (domain.HistoryStats, error)
	CommandUsage(tags []string) ([]domain.CommandUsage, error)
	Export(path string) error
	Import(path string) (int, error)
	Clear() error
	PruneOlderThan(days int) (int, error)
}

// TranslationCache memoizes translator replies keyed by prompt and context.
// Key derivation belongs to the implementation so callers stay free of the
// hashing scheme.
type TranslationCache interface {
	Key(input string, tags []string) string
	Get(key string) (string, bool)
	Put(key, command string) error
}

// Logger provides structured logging for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
