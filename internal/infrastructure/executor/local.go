// Package executor runs confirmed commands on the host shell.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// LocalExecutor spawns one shell process per command. No shell state
// persists between invocations.
type LocalExecutor struct {
	shell string
}

// NewLocalExecutor builds a new executor; shell defaults to $SHELL then /bin/sh.
func NewLocalExecutor(shell string) *LocalExecutor {
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}
	return &LocalExecutor{shell: shell}
}

// Run implements ports.CommandExecutor. A non-zero exit lands in the result;
// the error return is reserved for faults (spawn failure, timeout).
func (e *LocalExecutor) Run(ctx context.Context, command, dir string) (domain.ExecutionResult, error) {
	c := exec.CommandContext(ctx, e.shell, "-c", command)
	if dir != "" {
		c.Dir = dir
	}
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	result := domain.ExecutionResult{
		Stdout:   truncate(stdout.String()),
		Stderr:   truncate(stderr.String()),
		Duration: time.Since(start),
	}

	if ctx.Err() != nil {
		result.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
		return result, &domain.ExecutorFault{
			Command: command,
			Timeout: result.TimedOut,
			Err:     ctx.Err(),
		}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		if result.ExitCode < 0 {
			// killed by a signal rather than exiting on its own
			return result, &domain.ExecutorFault{Command: command, Err: err}
		}
		return result, nil
	}
	if err != nil {
		return result, &domain.ExecutorFault{Command: command, Err: err}
	}
	return result, nil
}

// Shell returns the configured shell binary.
func (e *LocalExecutor) Shell() string { return e.shell }

const maxCapturedOutput = 64 * 1024

func truncate(output string) string {
	if len(output) <= maxCapturedOutput {
		return output
	}
	return output[:maxCapturedOutput] + "\n[output truncated]\n"
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)
