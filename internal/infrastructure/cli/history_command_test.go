package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/llmsh/llmsh/internal/domain"
)

func TestRenderStatsProjectsSortedDeterministically(t *testing.T) {
	stats := domain.HistoryStats{
		Total:    6,
		Executed: 6,
		TagCounts: map[string]int{
			"rust":   1,
			"go":     3,
			"nodejs": 2,
		},
	}

	var first string
	for i := 0; i < 10; i++ {
		var buf bytes.Buffer
		renderStats(&buf, stats)
		if i == 0 {
			first = buf.String()
			continue
		}
		if buf.String() != first {
			t.Fatalf("renderStats output varies between calls:\n%s\nvs\n%s", first, buf.String())
		}
	}

	goIdx := strings.Index(first, "go: 3")
	nodeIdx := strings.Index(first, "nodejs: 2")
	rustIdx := strings.Index(first, "rust: 1")
	if goIdx < 0 || nodeIdx < 0 || rustIdx < 0 {
		t.Fatalf("missing project lines:\n%s", first)
	}
	if !(goIdx < nodeIdx && nodeIdx < rustIdx) {
		t.Fatalf("projects not in sorted order:\n%s", first)
	}
}

func TestRenderStatsEmptyHistory(t *testing.T) {
	var buf bytes.Buffer
	renderStats(&buf, domain.HistoryStats{})
	if !strings.Contains(buf.String(), "No history recorded yet.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
