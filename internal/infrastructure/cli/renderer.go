package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/llmsh/llmsh/internal/domain"
)

// RenderResult prints the outcome of one pipeline run.
func RenderResult(out io.Writer, result domain.SessionResult) {
	if result.Command != "" {
		source := ""
		if result.FromCache {
			source = " (cached)"
		}
		fmt.Fprintf(out, "$ %s%s\n", result.Command, source)
	}

	switch result.State {
	case domain.StateRejected:
		if result.Message != "" {
			fmt.Fprintln(out, result.Message)
		} else {
			fmt.Fprintln(out, "command rejected")
		}
	case domain.StateRecordedSuccess, domain.StateRecordedFailure:
		renderExecution(out, result)
	}

	if result.LoggingFailed {
		fmt.Fprintln(out, "warning: history could not be recorded")
	}
}

func renderExecution(out io.Writer, result domain.SessionResult) {
	exec := result.Execution
	if exec == nil {
		return
	}
	if exec.Stdout != "" {
		fmt.Fprint(out, exec.Stdout)
		if !strings.HasSuffix(exec.Stdout, "\n") {
			fmt.Fprintln(out)
		}
	}
	if exec.Stderr != "" {
		fmt.Fprint(out, exec.Stderr)
		if !strings.HasSuffix(exec.Stderr, "\n") {
			fmt.Fprintln(out)
		}
	}
	if exec.TimedOut {
		fmt.Fprintln(out, "command timed out")
	} else if exec.ExitCode != 0 {
		fmt.Fprintf(out, "exit %d\n", exec.ExitCode)
	}
}
