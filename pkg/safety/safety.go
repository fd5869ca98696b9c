package safety

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// Reason prefixes and labels recorded on the evaluation.
const (
	ReasonMissingRequestID      = "missing_request_id"
	ReasonInvalidField          = "invalid_field"
	ReasonMissingConsumerApp    = "missing_consumer_app"
	ReasonDisallowedCombination = "disallowed_combination"
	ReasonForcedFallback        = "forced_fallback"
	ReasonTestimonialOverlay    = "testimonial_claim_in_overlay"

	ReasonBrandColorIgnored   = "brand_color_ignored"
	ReasonBrandFieldSanitized = "brand_field_sanitized"
	ReasonOverlayDropped      = "overlay_text_dropped"
	ReasonAspectOverride      = "aspect_override"
	ReasonTextDisallowed      = "text_disallowed_by_override"
)

type combination struct {
	category types.Category
	platform types.Platform
}

// Combinations that are never generated. Testimonial-style imagery on a
// business listing reads as a fabricated review.
var disallowedCombinations = []combination{
	{types.CategorySocialProof, types.PlatformGoogleBusinessProfile},
}

var disallowedForApp = map[types.ConsumerApp][]types.Category{
	types.ConsumerAppReviewResponder: {types.CategorySocialProof},
}

// Evaluate judges whether a request may proceed to live generation.
func Evaluate(req *types.Request) types.SafetyEvaluation {
	if req == nil {
		return types.SafetyEvaluation{
			IsAllowed:    false,
			Reasons:      []string{ReasonMissingRequestID},
			UsedFallback: true,
		}
	}

	var hard, soft []string

	if strings.TrimSpace(req.RequestID) == "" {
		hard = append(hard, ReasonMissingRequestID)
	}
	for _, field := range fieldViolations(req) {
		hard = append(hard, ReasonInvalidField+":"+field)
	}
	if req.ConsumerApp == "" {
		hard = append(hard, ReasonMissingConsumerApp)
	}
	for _, c := range disallowedCombinations {
		if req.Category == c.category && req.Platform == c.platform {
			hard = append(hard, fmt.Sprintf("%s:%s/%s", ReasonDisallowedCombination, c.category, c.platform))
		}
	}
	for _, c := range disallowedForApp[req.ConsumerApp] {
		if req.Category == c {
			hard = append(hard, fmt.Sprintf("%s:%s/%s", ReasonDisallowedCombination, c, req.ConsumerApp))
		}
	}
	if req.Safety != nil && req.Safety.ForceFallback {
		if label := SanitizeLabel(req.Safety.Reason); label != "" {
			hard = append(hard, ReasonForcedFallback+":"+label)
		} else {
			hard = append(hard, ReasonForcedFallback)
		}
	}
	if ClaimsTestimonial(req.OverlayText) {
		hard = append(hard, ReasonTestimonialOverlay)
	}

	if req.BrandKit != nil {
		for i, c := range req.BrandKit.Colors {
			if !ValidColor(c) {
				soft = append(soft, fmt.Sprintf("%s:%d", ReasonBrandColorIgnored, i))
			}
		}
		for _, f := range brandFields(req.BrandKit) {
			if f.value == "" {
				continue
			}
			if _, changed := SanitizeField(f.value); changed {
				soft = append(soft, ReasonBrandFieldSanitized+":"+f.name)
			}
		}
	}
	allowance := types.TextAllowanceFor(req)
	if _, why := Overlay(req.OverlayText, allowance); why != "" {
		soft = append(soft, ReasonOverlayDropped+":"+why)
	}
	if req.Aspect != "" && req.Aspect != types.DefaultAspect(req.Platform) {
		soft = append(soft, ReasonAspectOverride+":"+string(req.Aspect))
	}
	if req.Safety != nil && req.Safety.DisallowText {
		soft = append(soft, ReasonTextDisallowed)
	}

	reasons := make([]string, 0, len(hard)+len(soft))
	reasons = append(reasons, hard...)
	reasons = append(reasons, soft...)

	return types.SafetyEvaluation{
		IsAllowed:    len(hard) == 0,
		Reasons:      reasons,
		UsedFallback: len(hard) > 0,
	}
}

// Overlay returns the overlay text that may be carried on a decision with the
// given allowance. When the text is dropped, why names the cause.
func Overlay(text string, allowance types.TextAllowance) (accepted string, why string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}
	if allowance == types.TextAllowanceNone {
		return "", "allowance_none"
	}
	if utf8.RuneCountInString(text) > types.OverlayLimit(allowance) {
		return "", "too_long"
	}
	return text, ""
}

type brandField struct {
	name  string
	value string
}

func brandFields(kit *types.BrandKit) []brandField {
	return []brandField{
		{"industry", kit.Industry},
		{"locale", kit.Locale},
		{"styleTone", kit.StyleTone},
	}
}
