package domain

import "fmt"

// TranslationError signals that the external translation service was
// unreachable, timed out, or produced a malformed reply.
type TranslationError struct {
	Provider string
	Err      error
}

func (e *TranslationError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("translation via %s failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *TranslationError) Unwrap() error { return e.Err }

// ExecutorFault signals that the command process could not be started or was
// terminated by timeout or signal. Distinct from a command that ran and
// exited non-zero.
type ExecutorFault struct {
	Command string
	Timeout bool
	Err     error
}

func (e *ExecutorFault) Error() string {
	if e.Timeout {
		return fmt.Sprintf("command timed out: %s", e.Command)
	}
	return fmt.Sprintf("executor fault: %v", e.Err)
}

func (e *ExecutorFault) Unwrap() error { return e.Err }

// StorageError signals that history persistence is unavailable or corrupt.
// The pipeline degrades on it instead of aborting the user's interaction.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
