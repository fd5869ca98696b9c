package types

// Request is the immutable input of one logical generation attempt.
// RequestID is caller-supplied and unique per attempt; resubmitting the same
// RequestID updates the existing audit record instead of creating a new one.
type Request struct {
	// RequestID identifies the generation attempt (upsert key)
	RequestID string `json:"requestId" validate:"max=128"`

	// ConsumerApp is the product surface that built the request
	ConsumerApp ConsumerApp `json:"consumerApp" validate:"omitempty,oneof=social_auto_poster faq_generator caption_generator review_responder content_writer"`

	// Platform is the destination platform
	Platform Platform `json:"platform" validate:"required,oneof=instagram facebook x google_business_profile blog"`

	// Aspect overrides the platform default aspect ratio
	Aspect Aspect `json:"aspect,omitempty" validate:"omitempty,oneof=1:1 4:5 16:9 4:3"`

	// Category is the content intent
	Category Category `json:"category" validate:"required,oneof=educational promotion social_proof local_abstract evergreen"`

	// Energy overrides the category default energy
	Energy Energy `json:"energy,omitempty" validate:"omitempty,oneof=low medium high"`

	// OverlayText is text the caller intends to place over the image.
	// It is carried on the Decision for the caller and never sent to a provider.
	OverlayText string `json:"overlayText,omitempty" validate:"max=200"`

	// BrandKit carries optional brand influence
	BrandKit *BrandKit `json:"brandKit,omitempty"`

	// Safety carries explicit safety overrides
	Safety *SafetyOverrides `json:"safety,omitempty"`
}

// BrandKit is the optional brand influence on a prompt plan.
// It intentionally has no business name or logo field.
type BrandKit struct {
	// Colors are hex colour values (#RGB or #RRGGBB)
	Colors []string `json:"colors,omitempty" validate:"max=8"`

	// Industry is a coarse industry label ("bakery", "home services")
	Industry string `json:"industry,omitempty" validate:"max=80"`

	// Locale is an abstract setting ("coastal town", "mountain village")
	Locale string `json:"locale,omitempty" validate:"max=80"`

	// StyleTone is the visual tone ("warm", "minimal", "playful")
	StyleTone string `json:"styleTone,omitempty" validate:"max=40"`
}

// SafetyOverrides are explicit caller instructions for the safety gate.
type SafetyOverrides struct {
	// ForceFallback blocks live generation for this request
	ForceFallback bool `json:"forceFallback,omitempty"`

	// Reason is an optional short label recorded with a forced fallback
	Reason string `json:"reason,omitempty" validate:"max=64"`

	// DisallowText forces the text allowance to none
	DisallowText bool `json:"disallowText,omitempty"`
}
