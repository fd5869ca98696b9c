package types

// CategoryDefaults are the per-category resolution defaults.
type CategoryDefaults struct {
	Energy        Energy
	TextAllowance TextAllowance
}

var platformAspects = map[Platform]Aspect{
	PlatformInstagram:             AspectPortrait,
	PlatformFacebook:              AspectSquare,
	PlatformX:                     AspectWide,
	PlatformGoogleBusinessProfile: AspectClassic,
	PlatformBlog:                  AspectWide,
}

var categoryDefaults = map[Category]CategoryDefaults{
	CategoryEducational:   {Energy: EnergyMedium, TextAllowance: TextAllowanceMinimal},
	CategoryPromotion:     {Energy: EnergyHigh, TextAllowance: TextAllowanceHeadline},
	CategorySocialProof:   {Energy: EnergyMedium, TextAllowance: TextAllowanceNone},
	CategoryLocalAbstract: {Energy: EnergyLow, TextAllowance: TextAllowanceNone},
	CategoryEvergreen:     {Energy: EnergyLow, TextAllowance: TextAllowanceMinimal},
}

// overlay text limits in runes per allowance
var overlayLimits = map[TextAllowance]int{
	TextAllowanceNone:     0,
	TextAllowanceMinimal:  24,
	TextAllowanceHeadline: 60,
}

// DefaultAspect returns the platform's default aspect ratio.
// Unknown platforms fall back to square.
func DefaultAspect(p Platform) Aspect {
	if a, ok := platformAspects[p]; ok {
		return a
	}
	return AspectSquare
}

// DefaultsFor returns the category defaults.
// Unknown categories get the most conservative defaults.
func DefaultsFor(c Category) CategoryDefaults {
	if d, ok := categoryDefaults[c]; ok {
		return d
	}
	return CategoryDefaults{Energy: EnergyLow, TextAllowance: TextAllowanceNone}
}

// OverlayLimit returns the maximum overlay text length for an allowance.
func OverlayLimit(a TextAllowance) int {
	return overlayLimits[a]
}

// TextAllowanceFor resolves the text allowance for a request: the category
// default, forced to none by a DisallowText safety override.
func TextAllowanceFor(req *Request) TextAllowance {
	if req.Safety != nil && req.Safety.DisallowText {
		return TextAllowanceNone
	}
	return DefaultsFor(req.Category).TextAllowance
}
