package services

import (
	"sort"
	"strings"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// seedSuggestions are per-project starter commands, ranked before history
// accumulates. Order within a tag encodes static relevance.
var seedSuggestions = map[string][]string{
	"go":     {"go build ./...", "go test ./...", "go run .", "go mod tidy"},
	"nodejs": {"npm install", "npm start", "npm run build", "npm test"},
	"python": {"pip install -r requirements.txt", "pytest", "python -m venv .venv"},
	"rust":   {"cargo build", "cargo test", "cargo run"},
	"java":   {"mvn package", "mvn test", "gradle build"},
	"docker": {"docker build -t app .", "docker compose up -d", "docker ps"},
	"git":    {"git status", "git add -A", "git commit", "git push", "git diff"},
	"web":    {"python -m http.server 8000"},
}

// Suggestion is one ranked candidate returned to the CLI.
type Suggestion struct {
	Command string
	Score   float64
	Source  string // "seed", "history" or "both"
}

// Ranker merges static per-project seeds with the user's successful command
// history. Scores combine static relevance and usage frequency under the
// configured weights.
type Ranker struct {
	Store    ports.HistoryStore
	Detector ports.ContextDetector
	Settings domain.SuggestionSettings
}

// Suggest detects the project at cwd and ranks candidates for it.
func (r *Ranker) Suggest(cwd string, intent string) ([]Suggestion, error) {
	var tags []string
	if r.Detector != nil {
		tags = r.Detector.Detect(cwd)
	}
	return r.Rank(intent, tags, r.Settings.MaxResults)
}

// Rank merges the seed lists for tags with history frequency, filters by
// intent keywords, and returns at most topN candidates. An empty result is
// not an error: a fresh install in an unmarked directory has nothing to say.
func (r *Ranker) Rank(intent string, tags []string, topN int) ([]Suggestion, error) {
	scores := map[string]*Suggestion{}
	for _, tag := range tags {
		seeds := seedSuggestions[tag]
		for i, command := range seeds {
			relevance := float64(len(seeds)-i) / float64(len(seeds))
			scores[command] = &Suggestion{
				Command: command,
				Score:   relevance * r.Settings.StaticWeight,
				Source:  "seed",
			}
		}
	}

	usage, lastUsed, err := r.historyScores(tags)
	if err != nil {
		return nil, err
	}
	var maxCount int
	for _, count := range usage {
		if count > maxCount {
			maxCount = count
		}
	}
	for command, count := range usage {
		frequency := float64(count) / float64(maxCount)
		if existing, ok := scores[command]; ok {
			existing.Score += frequency * r.Settings.HistoryWeight
			existing.Source = "both"
			continue
		}
		scores[command] = &Suggestion{
			Command: command,
			Score:   frequency * r.Settings.HistoryWeight,
			Source:  "history",
		}
	}

	keywords := strings.Fields(strings.ToLower(intent))
	var ranked []Suggestion
	for command, suggestion := range scores {
		if !matchesIntent(command, keywords) {
			continue
		}
		ranked = append(ranked, *suggestion)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			// recency breaks ties, then lexical order for determinism
			li, lj := lastUsed[ranked[i].Command], lastUsed[ranked[j].Command]
			if !li.Equal(lj) {
				return li.After(lj)
			}
			return ranked[i].Command < ranked[j].Command
		}
		return ranked[i].Score > ranked[j].Score
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// matchesIntent keeps a command when every intent keyword appears in it.
// An empty intent keeps everything.
func matchesIntent(command string, keywords []string) bool {
	lower := strings.ToLower(command)
	for _, keyword := range keywords {
		if !strings.Contains(lower, keyword) {
			return false
		}
	}
	return true
}

func (r *Ranker) historyScores(tags []string) (map[string]int, map[string]time.Time, error) {
	counts := map[string]int{}
	last := map[string]time.Time{}
	if r.Store == nil {
		return counts, last, nil
	}
	usage, err := r.Store.CommandUsage(tags)
	if err != nil {
		return nil, nil, err
	}
	for _, u := range usage {
		counts[u.Command] = u.Count
		last[u.Command] = u.LastUsed
	}
	return counts, last, nil
}
