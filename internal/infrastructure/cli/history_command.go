package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llmsh/llmsh/internal/app"
	"github.com/llmsh/llmsh/internal/domain"
)

const (
	defaultHistoryLimit = 20
	timestampFormat     = "2006-01-02 15:04:05"
)

func newHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the command log",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistorySearchCommand(container),
		newHistoryStatsCommand(container),
		newHistoryExportCommand(container),
		newHistoryImportCommand(container),
		newHistoryClearCommand(container),
		newHistoryPruneCommand(container),
	)
	return historyCmd
}

func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.HistoryStore.Recent(limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			renderEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistorySearchCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search entries by input or command substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := container.HistoryStore.Search(args[0], limit)
			if err != nil {
				return fmt.Errorf("search history: %w", err)
			}
			renderEntries(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultHistoryLimit, "Limit search results")
	return cmd
}

func newHistoryStatsCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show success rate, durations and top commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := container.HistoryStore.Stats(domain.StatsWindow{})
			if err != nil {
				return fmt.Errorf("history stats: %w", err)
			}
			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}
}

func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export all entries to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.HistoryStore.Export(args[0]); err != nil {
				return fmt.Errorf("export history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", args[0])
			return nil
		},
	}
}

func newHistoryImportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Import entries from a JSONL export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := container.HistoryStore.Import(args[0])
			if err != nil {
				return fmt.Errorf("import history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", count)
			return nil
		},
	}
}

func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := container.HistoryStore.Clear(); err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
}

func newHistoryPruneCommand(container *app.Container) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove entries older than N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return fmt.Errorf("--days must be > 0")
			}
			pruned, err := container.HistoryStore.PruneOlderThan(days)
			if err != nil {
				return fmt.Errorf("prune history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", pruned)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Days of history to keep")
	return cmd
}

func renderEntries(out io.Writer, entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history recorded yet.")
		return
	}
	for _, entry := range entries {
		command := entry.Command
		if command == "" {
			command = entry.Input
		}
		fmt.Fprintf(out, "%s | %-8s | %-8s | %s\n",
			entry.CreatedAt.Local().Format(timestampFormat),
			entry.RiskTier,
			entry.Outcome,
			command)
	}
}

func renderStats(out io.Writer, stats domain.HistoryStats) {
	if stats.Total == 0 {
		fmt.Fprintln(out, "No history recorded yet.")
		return
	}
	fmt.Fprintf(out, "Entries: %s\nExecuted: %s\nSuccess rate: %.1f%%\nMean duration: %.0f ms\n",
		humanize.Comma(int64(stats.Total)),
		humanize.Comma(int64(stats.Executed)),
		stats.SuccessRate,
		stats.MeanDurationMS)

	if len(stats.TopCommands) > 0 {
		fmt.Fprintln(out, "Top commands:")
		for _, count := range stats.TopCommands {
			fmt.Fprintf(out, "  %s (%d)\n", count.Command, count.Count)
		}
	}
	if len(stats.TierCounts) > 0 {
		fmt.Fprintln(out, "Risk distribution:")
		for tier := domain.TierSafe; tier <= domain.TierCritical; tier++ {
			if count, ok := stats.TierCounts[tier]; ok {
				fmt.Fprintf(out, "  %s: %d\n", tier, count)
			}
		}
	}
	if len(stats.TagCounts) > 0 {
		fmt.Fprintln(out, "Projects:")
		tags := make([]string, 0, len(stats.TagCounts))
		for tag := range stats.TagCounts {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		for _, tag := range tags {
			fmt.Fprintf(out, "  %s: %d\n", tag, stats.TagCounts[tag])
		}
	}
}
