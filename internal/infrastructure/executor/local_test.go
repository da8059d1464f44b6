package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")

	result, err := e.Run(context.Background(), "echo hello", "")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.ExitCode != 0 {
		t.Fatalf("expected exit 0, got %d", result.ExitCode)
	}
	if strings.TrimSpace(result.Stdout) != "hello" {
		t.Fatalf("unexpected stdout: %q", result.Stdout)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")

	result, err := e.Run(context.Background(), "exit 3", "")
	if err != nil {
		t.Fatalf("non-zero exit must not be a fault: %v", err)
	}
	if result.ExitCode != 3 {
		t.Fatalf("expected exit 3, got %d", result.ExitCode)
	}
}

func TestRunHonorsWorkingDir(t *testing.T) {
	dir := t.TempDir()
	e := NewLocalExecutor("/bin/sh")

	result, err := e.Run(context.Background(), "pwd", dir)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !strings.Contains(strings.TrimSpace(result.Stdout), dir) {
		t.Fatalf("expected pwd %q, got %q", dir, result.Stdout)
	}
}

func TestRunTimeoutReturnsFault(t *testing.T) {
	e := NewLocalExecutor("/bin/sh")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := e.Run(ctx, "sleep 5", "")
	if err == nil {
		t.Fatal("expected executor fault on timeout")
	}
	var fault *domain.ExecutorFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *domain.ExecutorFault, got %T", err)
	}
	if !fault.Timeout || !result.TimedOut {
		t.Fatalf("timeout not flagged: fault=%+v result=%+v", fault, result)
	}
}

func TestRunSpawnFailureReturnsFault(t *testing.T) {
	e := NewLocalExecutor("/nonexistent/shell")

	_, err := e.Run(context.Background(), "echo hi", "")
	var fault *domain.ExecutorFault
	if !errors.As(err, &fault) {
		t.Fatalf("expected *domain.ExecutorFault, got %v", err)
	}
}
