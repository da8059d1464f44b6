package services

import (
	"testing"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
)

type stubDetector struct {
	tags  []string
	files []string
}

func (s *stubDetector) Detect(string) []string { return s.tags }

func (s *stubDetector) Snapshot(cwd string) domain.ContextSnapshot {
	return domain.ContextSnapshot{
		WorkingDir: cwd,
		Shell:      "/bin/sh",
		User:       "tester",
		Tags:       s.tags,
		Files:      s.files,
	}
}

type usageStore struct {
	stubStore
	usage []domain.CommandUsage
}

func (s *usageStore) CommandUsage([]string) ([]domain.CommandUsage, error) {
	return s.usage, nil
}

func newRanker(tags []string, usage []domain.CommandUsage) *Ranker {
	return &Ranker{
		Store:    &usageStore{usage: usage},
		Detector: &stubDetector{tags: tags},
		Settings: domain.SuggestionSettings{StaticWeight: 1.0, HistoryWeight: 2.0, MaxResults: 10},
	}
}

func TestSuggestSeedsForDetectedProject(t *testing.T) {
	r := newRanker([]string{"go"}, nil)

	suggestions, err := r.Suggest("/work", "")
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if len(suggestions) == 0 {
		t.Fatal("expected seed suggestions for a go project")
	}
	if suggestions[0].Command != "go build ./..." {
		t.Fatalf("expected highest-relevance seed first, got %q", suggestions[0].Command)
	}
	if suggestions[0].Source != "seed" {
		t.Fatalf("unexpected source: %q", suggestions[0].Source)
	}
}

func TestSuggestHistoryOutweighsSeeds(t *testing.T) {
	usage := []domain.CommandUsage{
		{Command: "go test ./...", Count: 40, LastUsed: time.Now()},
		{Command: "make lint", Count: 10, LastUsed: time.Now()},
	}
	r := newRanker([]string{"go"}, usage)

	suggestions, err := r.Suggest("/work", "")
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if suggestions[0].Command != "go test ./..." {
		t.Fatalf("expected most-used command first, got %q", suggestions[0].Command)
	}
	if suggestions[0].Source != "both" {
		t.Fatalf("seed+history command should be merged, got %q", suggestions[0].Source)
	}
}

func TestSuggestIntentFilter(t *testing.T) {
	r := newRanker([]string{"git"}, nil)

	suggestions, err := r.Suggest("/work", "commit")
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Command != "git commit" {
		t.Fatalf("intent filter failed: %v", suggestions)
	}
}

func TestSuggestTieBrokenByRecency(t *testing.T) {
	now := time.Now()
	usage := []domain.CommandUsage{
		{Command: "cmd-old", Count: 5, LastUsed: now.Add(-time.Hour)},
		{Command: "cmd-new", Count: 5, LastUsed: now},
	}
	r := newRanker(nil, usage)

	suggestions, err := r.Suggest("/work", "")
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if suggestions[0].Command != "cmd-new" {
		t.Fatalf("expected recency tiebreak, got %v", suggestions)
	}
}

func TestSuggestEmptyIsNotAnError(t *testing.T) {
	r := newRanker(nil, nil)

	suggestions, err := r.Suggest("/work", "")
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if len(suggestions) != 0 {
		t.Fatalf("expected no suggestions, got %v", suggestions)
	}
}

func TestSuggestCapsResults(t *testing.T) {
	r := newRanker([]string{"go", "git", "docker"}, nil)
	r.Settings.MaxResults = 3

	suggestions, err := r.Suggest("/work", "")
	if err != nil {
		t.Fatalf("Suggest error: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 results, got %d", len(suggestions))
	}
}
