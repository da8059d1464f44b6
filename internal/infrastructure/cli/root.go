// Package cli exposes the cobra command tree.
package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/llmsh/llmsh/internal/app"
	"github.com/llmsh/llmsh/internal/domain"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}
	container.Pipeline.Prompter = NewPrompter(nil, nil)

	runCmd := newRunCommand(container)

	root := &cobra.Command{
		Use:   "llmsh [request]",
		Short: "llmsh - natural language shell",
		Long:  "llmsh translates natural language into shell commands, classifies their risk, and records every outcome.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			runCmd.SetArgs(args)
			return runCmd.ExecuteContext(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(runCmd)
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newSuggestCommand(container))
	root.AddCommand(newConfigCommand(container))
	return root, nil
}

func newRunCommand(container *app.Container) *cobra.Command {
	var (
		direct  bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [request]",
		Short: "Translate and run a natural-language request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			input := strings.Join(args, " ")
			req := domain.CommandRequest{
				Input:     input,
				Direct:    direct || looksLikeCommand(input),
				CreatedAt: time.Now().UTC(),
			}
			result, err := container.Pipeline.Run(ctx, req)
			RenderResult(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().BoolVarP(&direct, "direct", "d", false, "Treat input as a literal shell command, skipping translation")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall request timeout")
	return cmd
}

// commonBinaries drive the direct-mode heuristic: input whose first token is
// a well-known binary is treated as a literal command, not prose.
var commonBinaries = map[string]struct{}{
	"ls": {}, "cd": {}, "pwd": {}, "cat": {}, "grep": {}, "find": {},
	"git": {}, "go": {}, "npm": {}, "pip": {}, "cargo": {}, "make": {},
	"docker": {}, "kubectl": {}, "curl": {}, "wget": {}, "ssh": {},
	"rm": {}, "cp": {}, "mv": {}, "mkdir": {}, "touch": {}, "chmod": {},
	"echo": {}, "ps": {}, "kill": {}, "tar": {}, "df": {}, "du": {},
}

func looksLikeCommand(input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}
	if strings.ContainsAny(fields[0], "/.") {
		return true
	}
	_, ok := commonBinaries[fields[0]]
	return ok
}
