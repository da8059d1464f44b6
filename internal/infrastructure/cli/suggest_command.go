package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llmsh/llmsh/internal/app"
)

func newSuggestCommand(container *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest [intent keywords]",
		Short: "Suggest commands for the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			suggestions, err := container.Ranker.Suggest(cwd, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("suggest: %w", err)
			}
			if len(suggestions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No suggestions for this directory yet.")
				return nil
			}
			for _, suggestion := range suggestions {
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", suggestion.Command, suggestion.Source)
			}
			return nil
		},
	}
	return cmd
}
