package decision

import (
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/prompt"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/safety"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// DefaultProviderID is used when no provider is configured.
const DefaultProviderID = "stub"

// Provider plan notes.
const (
	NoteProviderFromConfig = "provider_from_config"
	NoteProviderDefault    = "provider_default"
	NotePremiumTier        = "premium_tier"
)

// Options carries the environment-dependent inputs of resolution.
type Options struct {
	// ProviderID is the configured provider for live decisions
	ProviderID string

	// ModelTier is the configured default tier (standard when empty)
	ModelTier types.ModelTier

	// PremiumCategories are upgraded to the premium tier
	PremiumCategories []types.Category
}

// Resolve combines a request, platform and category defaults, and the safety
// verdict into one Decision.
func Resolve(req *types.Request, opts Options) types.Decision {
	if req == nil {
		req = &types.Request{}
	}

	d := types.Decision{
		RequestID:   strings.TrimSpace(req.RequestID),
		ConsumerApp: req.ConsumerApp,
		Platform:    req.Platform,
		Category:    req.Category,
	}

	// 1. aspect
	d.Aspect = types.DefaultAspect(req.Platform)
	if req.Aspect.Valid() {
		d.Aspect = req.Aspect
	}

	// 2. category defaults
	defaults := types.DefaultsFor(req.Category)
	d.Energy = defaults.Energy
	if req.Energy.Valid() {
		d.Energy = req.Energy
	}
	d.Text = types.TextPlan{Allowance: types.TextAllowanceFor(req)}

	// 3. safety
	d.Safety = safety.Evaluate(req)

	// 4. fallback
	if !d.Safety.IsAllowed {
		d.Mode = types.ModeFallback
		d.PromptPlan = types.EmptyPromptPlan()
		d.ProviderPlan = types.EmptyProviderPlan()
		return d
	}

	// 5. live
	d.Mode = types.ModeLive
	if overlay, _ := safety.Overlay(req.OverlayText, d.Text.Allowance); overlay != "" {
		d.Text.OverlayText = overlay
	}
	d.PromptPlan = prompt.Plan(&d, req.BrandKit)
	d.ProviderPlan = planProvider(d.Category, opts)

	return d
}

func planProvider(c types.Category, opts Options) types.ProviderPlan {
	plan := types.ProviderPlan{
		ProviderID: strings.TrimSpace(opts.ProviderID),
		ModelTier:  opts.ModelTier,
		Notes:      []string{},
	}
	if plan.ProviderID == "" {
		plan.ProviderID = DefaultProviderID
		plan.Notes = append(plan.Notes, NoteProviderDefault)
	} else {
		plan.Notes = append(plan.Notes, NoteProviderFromConfig)
	}
	if plan.ModelTier == "" {
		plan.ModelTier = types.ModelTierStandard
	}
	for _, pc := range opts.PremiumCategories {
		if pc == c && plan.ModelTier != types.ModelTierPremium {
			plan.ModelTier = types.ModelTierPremium
			plan.Notes = append(plan.Notes, NotePremiumTier+":"+string(c))
			break
		}
	}
	return plan
}
