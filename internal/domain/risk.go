// Package domain defines core business entities and value objects for llmsh.
//
// The domain layer is independent of infrastructure concerns and represents
// pure data structures shared across the pipeline, classifier and stores.
package domain

// RiskTier is the ordered severity of a candidate command.
type RiskTier int

const (
	TierSafe RiskTier = iota
	TierLow
	TierMedium
	TierHigh
	TierCritical
)

var tierNames = map[RiskTier]string{
	TierSafe:     "safe",
	TierLow:      "low",
	TierMedium:   "medium",
	TierHigh:     "high",
	TierCritical: "critical",
}

func (t RiskTier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "safe"
}

// MarshalText stores tiers as their lowercase names in JSON and YAML.
func (t RiskTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the lowercase tier names; unknown values map to safe.
func (t *RiskTier) UnmarshalText(text []byte) error {
	*t = ParseRiskTier(string(text))
	return nil
}

// ParseRiskTier maps a tier name to its RiskTier, defaulting to TierSafe.
func ParseRiskTier(value string) RiskTier {
	for tier, name := range tierNames {
		if name == value {
			return tier
		}
	}
	return TierSafe
}

// Trigger records one matched classification rule.
type Trigger struct {
	Rule   string `json:"rule"`
	Match  string `json:"match"`
	Reason string `json:"reason"`
}

// RiskAssessment is the immutable output of classifying one command.
// Tier is the maximum severity across all matched rules; Triggers preserves
// every match in rule registration order. An empty trigger list implies
// TierSafe.
type RiskAssessment struct {
	Tier                       RiskTier  `json:"tier"`
	Triggers                   []Trigger `json:"triggers,omitempty"`
	RequiresDoubleConfirmation bool      `json:"requires_double_confirmation"`
}

// NewRiskAssessment derives the confirmation flag from the tier.
func NewRiskAssessment(tier RiskTier, triggers []Trigger) RiskAssessment {
	return RiskAssessment{
		Tier:                       tier,
		Triggers:                   triggers,
		RequiresDoubleConfirmation: tier >= TierHigh,
	}
}
