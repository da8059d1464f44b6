// Package classifier implements the rule-based risk classification engine.
package classifier

import (
	"regexp"
	"sort"
	"strings"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// SplitDepth selects how compound input is decomposed for per-segment
// classification when the whole string matched no rule.
type SplitDepth string

const (
	// SplitStatements splits on ;, && and ||.
	SplitStatements SplitDepth = "statements"
	// SplitStatementsAndPipes additionally splits on |.
	SplitStatementsAndPipes SplitDepth = "statements+pipes"
)

type compiledRule struct {
	name   string
	tier   domain.RiskTier
	reason string
	re     *regexp.Regexp
}

// Classifier evaluates candidate commands against an ordered rule table.
// It holds no mutable state after construction and is safe for concurrent
// use.
type Classifier struct {
	rules []compiledRule
	depth SplitDepth
}

// Options tune classifier construction.
type Options struct {
	RulesFile string
	Depth     SplitDepth
}

// New compiles the rule table from the given YAML file, or the built-in
// defaults when the path is empty or unreadable.
func New(opts Options) (*Classifier, error) {
	rules, err := loadRules(opts.RulesFile)
	if err != nil {
		return nil, err
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{
			name:   rule.Name,
			tier:   domain.ParseRiskTier(rule.Tier),
			reason: rule.Reason,
			re:     re,
		})
	}
	// evaluation order: highest tier first, registration order within a tier
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].tier > compiled[j].tier
	})

	depth := opts.Depth
	if depth == "" {
		depth = SplitStatements
	}
	return &Classifier{rules: compiled, depth: depth}, nil
}

// Classify implements ports.RiskClassifier. It is total: empty or
// unclassifiable input yields a safe assessment with no triggers.
func (c *Classifier) Classify(command string) domain.RiskAssessment {
	normalized := strings.ToLower(strings.TrimSpace(command))
	if normalized == "" {
		return domain.NewRiskAssessment(domain.TierSafe, nil)
	}

	tier, triggers := c.match(normalized)
	if len(triggers) == 0 {
		// A compound can smuggle a destructive sub-command behind an
		// innocuous prefix; classify each segment and take the maximum.
		for _, segment := range c.split(normalized) {
			segTier, segTriggers := c.match(segment)
			if segTier > tier {
				tier = segTier
			}
			triggers = append(triggers, segTriggers...)
		}
	}

	return domain.NewRiskAssessment(tier, triggers)
}

func (c *Classifier) match(command string) (domain.RiskTier, []domain.Trigger) {
	tier := domain.TierSafe
	var triggers []domain.Trigger
	for _, rule := range c.rules {
		match := rule.re.FindString(command)
		if match == "" {
			continue
		}
		if rule.tier > tier {
			tier = rule.tier
		}
		triggers = append(triggers, domain.Trigger{
			Rule:   rule.name,
			Match:  match,
			Reason: rule.reason,
		})
	}
	return tier, triggers
}

var statementSeparators = regexp.MustCompile(`&&|\|\||;`)

func (c *Classifier) split(command string) []string {
	if !statementSeparators.MatchString(command) && !strings.Contains(command, "|") {
		return nil
	}
	parts := statementSeparators.Split(command, -1)
	if c.depth == SplitStatementsAndPipes {
		var piped []string
		for _, part := range parts {
			piped = append(piped, strings.Split(part, "|")...)
		}
		parts = piped
	}
	var segments []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) <= 1 {
		return nil
	}
	return segments
}

// ReadOnly reports whether the command's first token is a known read-only
// binary. Display hint only; it never lowers an assessed tier.
func ReadOnly(command string) bool {
	fields := strings.Fields(strings.TrimSpace(command))
	if len(fields) == 0 {
		return false
	}
	_, ok := safePrefixes[fields[0]]
	return ok
}

var _ ports.RiskClassifier = (*Classifier)(nil)
