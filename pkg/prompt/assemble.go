package prompt

import (
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// GuardrailClause is present in every assembled prompt.
const GuardrailClause = "Abstract, non-literal imagery with no identifiable people, no faces and no real locations."

// ExclusionPrefix opens the negative-rule clause that ends every prompt.
const ExclusionPrefix = "Must not include: "

// Assemble renders a plan into the provider-ready prompt string.
func Assemble(plan types.PromptPlan) string {
	v := plan.Variables
	var b strings.Builder

	b.WriteString("Create an image for a ")
	b.WriteString(orDefault(v[VarPlatform], "social media post"))
	b.WriteString(". Category: ")
	b.WriteString(orDefault(v[VarCategory], "general"))
	b.WriteString(". Intent: ")
	b.WriteString(orDefault(v[VarIntent], "set a neutral brand mood"))
	b.WriteString(". Energy: ")
	b.WriteString(orDefault(v[VarEnergy], string(types.EnergyLow)))
	if mood := v[VarMood]; mood != "" {
		b.WriteString(", ")
		b.WriteString(mood)
	}
	b.WriteString(".\n")

	if comp := v[VarComposition]; comp != "" {
		b.WriteString("Composition: ")
		b.WriteString(comp)
		if aspect := v[VarAspect]; aspect != "" {
			b.WriteString(", aspect ratio ")
			b.WriteString(aspect)
		}
		b.WriteString(".\n")
	}

	optional := []struct{ key, lead, tail string }{
		{VarPalette, "Colour palette: ", "."},
		{VarIndustry, "Theme inspired by the ", " industry, expressed through shapes and materials only."},
		{VarLocale, "Atmosphere suggesting a ", " setting, rendered abstractly."},
		{VarTone, "Visual tone: ", "."},
	}
	for _, o := range optional {
		if val := v[o.key]; val != "" {
			b.WriteString(o.lead)
			b.WriteString(val)
			b.WriteString(o.tail)
			b.WriteString("\n")
		}
	}

	if text := v[VarText]; text != "" {
		b.WriteString("Text: ")
		b.WriteString(text)
		b.WriteString(".\n")
	}

	b.WriteString(GuardrailClause)
	b.WriteString("\n")
	b.WriteString(ExclusionPrefix)
	b.WriteString(strings.Join(plan.NegativeRules, "; "))
	b.WriteString(".")

	return b.String()
}

// NegativePrompt renders the negative rules for adapters with a native
// negative-prompt field.
func NegativePrompt(plan types.PromptPlan) string {
	return strings.Join(plan.NegativeRules, ", ")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
