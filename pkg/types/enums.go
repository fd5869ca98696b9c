package types

// ConsumerApp identifies the product surface that asked for an image.
type ConsumerApp string

const (
	ConsumerAppSocialAutoPoster ConsumerApp = "social_auto_poster"
	ConsumerAppFAQGenerator     ConsumerApp = "faq_generator"
	ConsumerAppCaptionGenerator ConsumerApp = "caption_generator"
	ConsumerAppReviewResponder  ConsumerApp = "review_responder"
	ConsumerAppContentWriter    ConsumerApp = "content_writer"
)

// Platform is the destination the image is composed for.
type Platform string

const (
	PlatformInstagram             Platform = "instagram"
	PlatformFacebook              Platform = "facebook"
	PlatformX                     Platform = "x"
	PlatformGoogleBusinessProfile Platform = "google_business_profile"
	PlatformBlog                  Platform = "blog"
)

// Aspect is an aspect ratio the size resolver knows how to map to pixels.
type Aspect string

const (
	AspectSquare   Aspect = "1:1"
	AspectPortrait Aspect = "4:5"
	AspectWide     Aspect = "16:9"
	AspectClassic  Aspect = "4:3"
)

// Category attaches the content intent of an image.
type Category string

const (
	CategoryEducational   Category = "educational"
	CategoryPromotion     Category = "promotion"
	CategorySocialProof   Category = "social_proof"
	CategoryLocalAbstract Category = "local_abstract"
	CategoryEvergreen     Category = "evergreen"
)

// Energy is the visual intensity of the composition.
type Energy string

const (
	EnergyLow    Energy = "low"
	EnergyMedium Energy = "medium"
	EnergyHigh   Energy = "high"
)

// Mode says whether a decision goes to a live provider or straight to fallback.
type Mode string

const (
	ModeLive     Mode = "live"
	ModeFallback Mode = "fallback"
)

// TextAllowance bounds how much overlay text a caller may place on the image.
type TextAllowance string

const (
	TextAllowanceNone     TextAllowance = "none"
	TextAllowanceMinimal  TextAllowance = "minimal"
	TextAllowanceHeadline TextAllowance = "headline"
)

// ModelTier selects between provider model families.
type ModelTier string

const (
	ModelTierStandard ModelTier = "standard"
	ModelTierPremium  ModelTier = "premium"
)

// Platforms lists every supported platform in declaration order.
var Platforms = []Platform{
	PlatformInstagram,
	PlatformFacebook,
	PlatformX,
	PlatformGoogleBusinessProfile,
	PlatformBlog,
}

// Categories lists every supported category in declaration order.
var Categories = []Category{
	CategoryEducational,
	CategoryPromotion,
	CategorySocialProof,
	CategoryLocalAbstract,
	CategoryEvergreen,
}

// Aspects lists every aspect ratio the size resolver can map.
var Aspects = []Aspect{AspectSquare, AspectPortrait, AspectWide, AspectClassic}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Valid reports whether a is a known aspect ratio.
func (a Aspect) Valid() bool {
	for _, known := range Aspects {
		if a == known {
			return true
		}
	}
	return false
}

// Valid reports whether e is a known energy level.
func (e Energy) Valid() bool {
	switch e {
	case EnergyLow, EnergyMedium, EnergyHigh:
		return true
	}
	return false
}
