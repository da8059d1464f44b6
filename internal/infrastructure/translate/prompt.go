package translate

import (
	"fmt"
	"strings"

	"github.com/llmsh/llmsh/internal/domain"
)

func renderSystemPrompt(snapshot domain.ContextSnapshot) string {
	var builder strings.Builder
	builder.WriteString("You translate natural language into a single POSIX shell command.\n")
	builder.WriteString("Reply with ONLY the command, inside a fenced code block.\n")
	builder.WriteString("Never invent destructive commands the user did not ask for.\n")
	if snapshot.Shell != "" {
		builder.WriteString(fmt.Sprintf("Target shell: %s\n", snapshot.Shell))
	}
	return builder.String()
}

func renderUserPrompt(input string, snapshot domain.ContextSnapshot) string {
	var builder strings.Builder
	builder.WriteString("Request:\n")
	builder.WriteString(input)
	builder.WriteString("\n\nEnvironment:\n")
	if snapshot.WorkingDir != "" {
		builder.WriteString(fmt.Sprintf("- Directory: %s\n", snapshot.WorkingDir))
	}
	if len(snapshot.Tags) > 0 {
		builder.WriteString(fmt.Sprintf("- Project type: %s\n", strings.Join(snapshot.Tags, ", ")))
	}
	if len(snapshot.Files) > 0 {
		builder.WriteString(fmt.Sprintf("- Files: %s\n", strings.Join(snapshot.Files, ", ")))
	}
	return builder.String()
}
