package history

import (
	"sort"

	"github.com/llmsh/llmsh/internal/domain"
)

const topCommandLimit = 10

// computeStats derives aggregates from an entry set. Shared by both store
// backends so the numbers agree regardless of persistence medium.
func computeStats(entries []domain.HistoryEntry) domain.HistoryStats {
	stats := domain.HistoryStats{
		Total:      len(entries),
		TierCounts: map[domain.RiskTier]int{},
		TagCounts:  map[string]int{},
	}

	frequency := map[string]int{}
	successful := 0
	var durationTotal int64

	for _, entry := range entries {
		stats.TierCounts[entry.RiskTier]++
		if entry.ContextTag != "" {
			stats.TagCounts[entry.ContextTag]++
		}
		switch entry.Outcome {
		case domain.OutcomeSuccess:
			stats.Executed++
			successful++
			durationTotal += entry.DurationMS
		case domain.OutcomeFailure:
			stats.Executed++
			durationTotal += entry.DurationMS
		}
		if entry.Command != "" {
			frequency[entry.Command]++
		}
	}

	if stats.Executed > 0 {
		stats.SuccessRate = float64(successful) / float64(stats.Executed) * 100.0
		stats.MeanDurationMS = float64(durationTotal) / float64(stats.Executed)
	}
	stats.TopCommands = topCommands(frequency, topCommandLimit)
	return stats
}

func topCommands(frequency map[string]int, limit int) []domain.CommandCount {
	counts := make([]domain.CommandCount, 0, len(frequency))
	for command, count := range frequency {
		counts = append(counts, domain.CommandCount{Command: command, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count == counts[j].Count {
			return counts[i].Command < counts[j].Command
		}
		return counts[i].Count > counts[j].Count
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
