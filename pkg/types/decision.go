package types

// Decision is the deterministic, pure-function description of how a single
// image request will be fulfilled. It is computed fresh per call and only a
// redacted projection of it is ever persisted.
type Decision struct {
	RequestID   string      `json:"requestId"`
	ConsumerApp ConsumerApp `json:"consumerApp"`
	Platform    Platform    `json:"platform"`
	Aspect      Aspect      `json:"aspect"`
	Category    Category    `json:"category"`
	Energy      Energy      `json:"energy"`
	Mode        Mode        `json:"mode"`

	Text         TextPlan         `json:"text"`
	Safety       SafetyEvaluation `json:"safety"`
	PromptPlan   PromptPlan       `json:"promptPlan"`
	ProviderPlan ProviderPlan     `json:"providerPlan"`
}

// TextPlan is the resolved overlay text policy.
type TextPlan struct {
	Allowance   TextAllowance `json:"allowance"`
	OverlayText string        `json:"overlayText,omitempty"`
}

// SafetyEvaluation is the verdict of the safety gate.
type SafetyEvaluation struct {
	// IsAllowed is false when any hard rule fired
	IsAllowed bool `json:"isAllowed"`

	// Reasons lists every rule that fired, hard or soft, in rule order
	Reasons []string `json:"reasons"`

	// UsedFallback is true when the verdict routes the request to fallback
	UsedFallback bool `json:"usedFallback"`
}

// PromptPlan is a structured, non-literal description of generation intent.
// It is distinct from the assembled prompt string, which is never persisted.
type PromptPlan struct {
	TemplateID    string            `json:"templateId"`
	Variables     map[string]string `json:"variables"`
	NegativeRules []string          `json:"negativeRules"`
}

// ProviderPlan describes which backend should serve a live decision.
type ProviderPlan struct {
	ProviderID string    `json:"providerId"`
	ModelTier  ModelTier `json:"modelTier"`
	Notes      []string  `json:"notes"`
}

// IsLive reports whether the decision should reach a provider.
func (d *Decision) IsLive() bool {
	return d.Mode == ModeLive
}

// EmptyPromptPlan returns the plan used for fallback decisions.
func EmptyPromptPlan() PromptPlan {
	return PromptPlan{
		Variables:     map[string]string{},
		NegativeRules: []string{},
	}
}

// EmptyProviderPlan returns the provider plan used for fallback decisions.
func EmptyProviderPlan() ProviderPlan {
	return ProviderPlan{Notes: []string{}}
}
