package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/infrastructure/classifier"
	"github.com/llmsh/llmsh/internal/ports"
)

// Prompter implements ConfirmationPrompter using stdin/stdout.
type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter constructs a prompter referencing stdio. When stdin is not a
// terminal the prompter reports itself disabled and the pipeline rejects
// anything that needs confirmation.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := true
	if in == nil {
		in = os.Stdin
		interactive = isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
	if out == nil {
		out = os.Stdout
	}
	return &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive,
	}
}

// Enabled indicates the prompter can interact with the user.
func (p *Prompter) Enabled() bool {
	return p.interactive
}

// Confirm asks for approval. High and critical tiers require the literal
// word "yes"; the second attempt restates the triggers so the user re-reads
// what they are approving.
func (p *Prompter) Confirm(assessment domain.RiskAssessment, command string, attempt int) (bool, error) {
	if attempt > 1 {
		fmt.Fprintf(p.out, "\nSecond confirmation for a %s-risk command.\n", assessment.Tier)
	} else {
		fmt.Fprintf(p.out, "\n%s risk\n", strings.ToUpper(assessment.Tier.String()))
	}
	for _, trigger := range assessment.Triggers {
		fmt.Fprintf(p.out, " - %s (%s)\n", trigger.Reason, trigger.Rule)
	}
	if assessment.Tier == domain.TierSafe && classifier.ReadOnly(command) {
		fmt.Fprintln(p.out, " - read-only operation")
	}
	fmt.Fprintf(p.out, "Command:\n  %s\n", command)

	if assessment.Tier >= domain.TierHigh {
		return p.askExplicit()
	}
	return p.ask("[y/N]: ")
}

func (p *Prompter) ask(prompt string) (bool, error) {
	fmt.Fprint(p.out, "Run it? ", prompt)
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes", nil
}

func (p *Prompter) askExplicit() (bool, error) {
	fmt.Fprint(p.out, "Type 'yes' to run (anything else cancels): ")
	line, err := p.in.ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}

var _ ports.ConfirmationPrompter = (*Prompter)(nil)
