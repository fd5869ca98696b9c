package audit

import (
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// RedactedDecision is the persisted projection of a Decision. It keeps the
// template id and negative rules but never the assembled prompt, the plan
// variables or the overlay text.
type RedactedDecision struct {
	Mode          types.Mode          `json:"mode"`
	Energy        types.Energy        `json:"energy,omitempty"`
	TextAllowance types.TextAllowance `json:"textAllowance,omitempty"`
	TemplateID    string              `json:"templateId,omitempty"`
	NegativeRules []string            `json:"negativeRules"`
	Safety        RedactedSafety      `json:"safety"`
	ProviderID    string              `json:"providerId,omitempty"`
	ModelTier     types.ModelTier     `json:"modelTier,omitempty"`
}

// RedactedSafety mirrors the safety verdict.
type RedactedSafety struct {
	IsAllowed    bool     `json:"isAllowed"`
	Reasons      []string `json:"reasons"`
	UsedFallback bool     `json:"usedFallback"`
}

// Redact projects d for storage. Slices are copied so later mutation of
// the decision cannot change a queued record.
func Redact(d *types.Decision) RedactedDecision {
	if d == nil {
		return RedactedDecision{NegativeRules: []string{}, Safety: RedactedSafety{Reasons: []string{}}}
	}
	return RedactedDecision{
		Mode:          d.Mode,
		Energy:        d.Energy,
		TextAllowance: d.Text.Allowance,
		TemplateID:    d.PromptPlan.TemplateID,
		NegativeRules: copyStrings(d.PromptPlan.NegativeRules),
		Safety: RedactedSafety{
			IsAllowed:    d.Safety.IsAllowed,
			Reasons:      copyStrings(d.Safety.Reasons),
			UsedFallback: d.Safety.UsedFallback,
		},
		ProviderID: d.ProviderPlan.ProviderID,
		ModelTier:  d.ProviderPlan.ModelTier,
	}
}

// JobFromDecision starts a job record from the decision's identity fields.
func JobFromDecision(d *types.Decision, status Status) *JobRecord {
	return &JobRecord{
		RequestID:   d.RequestID,
		Status:      status,
		ConsumerApp: string(d.ConsumerApp),
		Platform:    string(d.Platform),
		Category:    string(d.Category),
		Aspect:      string(d.Aspect),
		ProviderID:  d.ProviderPlan.ProviderID,
		Decision:    Redact(d),
	}
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
