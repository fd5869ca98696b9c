package prompt

import (
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/safety"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// Variable names carried in a plan.
const (
	VarCategory    = "category"
	VarPlatform    = "platform"
	VarAspect      = "aspect"
	VarEnergy      = "energy"
	VarMood        = "mood"
	VarIntent      = "intent"
	VarComposition = "composition"
	VarText        = "text"
	VarPalette     = "palette"
	VarIndustry    = "industry"
	VarLocale      = "locale"
	VarTone        = "tone"
)

// TemplateVersion is bumped whenever the meaning of a template changes.
const TemplateVersion = "v1"

var baseNegativeRules = []string{
	"identifiable people or faces",
	"real locations or landmarks",
	"business names, logos or trademarks",
	"rendered text, letters or numbers",
	"watermarks or signatures",
	"review stars, quotes or testimonial cards",
}

var categoryNegativeRules = map[types.Category][]string{
	types.CategoryEducational:   {"charts with fabricated data", "readable diagrams or labels"},
	types.CategoryPromotion:     {"prices or discount figures", "urgency countdowns"},
	types.CategorySocialProof:   {"ratings or score badges", "speech bubbles", "customer portraits"},
	types.CategoryLocalAbstract: {"maps or street signs", "recognizable skylines"},
	types.CategoryEvergreen:     {"seasonal dates or holiday symbols"},
}

var categoryIntents = map[types.Category]string{
	types.CategoryEducational:   "explain an idea visually through simple symbolic shapes",
	types.CategoryPromotion:     "convey excitement about a special offer through bold colour and motion",
	types.CategorySocialProof:   "convey trust and community warmth through abstract interlocking forms",
	types.CategoryLocalAbstract: "evoke a sense of neighbourhood and place through abstract textures",
	types.CategoryEvergreen:     "set a calm, timeless brand mood",
}

var platformLabels = map[types.Platform]string{
	types.PlatformInstagram:             "Instagram feed post",
	types.PlatformFacebook:              "Facebook post",
	types.PlatformX:                     "X post",
	types.PlatformGoogleBusinessProfile: "Google Business Profile update",
	types.PlatformBlog:                  "blog header",
}

var platformCompositions = map[types.Platform]string{
	types.PlatformInstagram:             "vertical composition with a strong central focal point",
	types.PlatformFacebook:              "balanced square composition",
	types.PlatformX:                     "wide banner composition with generous margins",
	types.PlatformGoogleBusinessProfile: "clean landscape composition",
	types.PlatformBlog:                  "wide editorial composition with open space on one side",
}

var energyMoods = map[types.Energy]string{
	types.EnergyLow:    "calm with soft light",
	types.EnergyMedium: "balanced and inviting",
	types.EnergyHigh:   "vibrant and dynamic",
}

var textGuidance = map[types.TextAllowance]string{
	types.TextAllowanceNone:     "keep the whole frame free of text",
	types.TextAllowanceMinimal:  "leave a small clean area for a short caption added later",
	types.TextAllowanceHeadline: "leave a clear band of negative space for a headline added later",
}

// Plan builds the prompt plan for a resolved decision. The brand kit is
// optional; only sanitized fields and valid colours reach the plan.
func Plan(d *types.Decision, kit *types.BrandKit) types.PromptPlan {
	vars := map[string]string{
		VarCategory:    strings.ReplaceAll(string(d.Category), "_", " "),
		VarPlatform:    label(platformLabels, d.Platform, string(d.Platform)),
		VarAspect:      string(d.Aspect),
		VarEnergy:      string(d.Energy),
		VarMood:        energyMoods[d.Energy],
		VarIntent:      categoryIntents[d.Category],
		VarComposition: label(platformCompositions, d.Platform, "balanced composition"),
		VarText:        textGuidance[d.Text.Allowance],
	}

	if kit != nil {
		if palette := palette(kit.Colors); palette != "" {
			vars[VarPalette] = palette
		}
		for name, value := range map[string]string{
			VarIndustry: kit.Industry,
			VarLocale:   kit.Locale,
			VarTone:     kit.StyleTone,
		} {
			if clean, _ := safety.SanitizeField(value); clean != "" {
				vars[name] = clean
			}
		}
	}

	rules := make([]string, 0, len(baseNegativeRules)+3)
	rules = append(rules, baseNegativeRules...)
	rules = append(rules, categoryNegativeRules[d.Category]...)

	return types.PromptPlan{
		TemplateID:    TemplateID(d.Category),
		Variables:     vars,
		NegativeRules: rules,
	}
}

// TemplateID returns the template identifier for a category.
func TemplateID(c types.Category) string {
	return string(c) + "." + TemplateVersion
}

func palette(colors []string) string {
	seen := make(map[string]struct{}, len(colors))
	out := make([]string, 0, len(colors))
	for _, c := range colors {
		if !safety.ValidColor(c) {
			continue
		}
		n := safety.NormalizeColor(c)
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return strings.Join(out, ", ")
}

func label[K comparable](m map[K]string, k K, fallback string) string {
	if v, ok := m[k]; ok {
		return v
	}
	return fallback
}
