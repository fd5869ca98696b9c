package providers

import (
	"strings"
	"time"
)

// Error codes returned in GenerateOutput.ErrorCode.
const (
	CodeProviderError       = "PROVIDER_ERROR"
	CodeProviderHTTPError   = "PROVIDER_HTTP_ERROR"
	CodeProviderBadResponse = "PROVIDER_BAD_RESPONSE"
	CodeProviderTimeout     = "PROVIDER_TIMEOUT"
	CodeNoImageReturned     = "NO_IMAGE_RETURNED"
)

// DefaultTimeout is the hard per-call timeout applied when none is configured.
const DefaultTimeout = 25 * time.Second

// GenerateInput is the adapter-boundary request.
// Prompt must never be logged or persisted.
type GenerateInput struct {
	// Prompt is the assembled provider-ready prompt
	Prompt string `json:"-"`

	// NegativePrompt lists exclusions for backends with a native field
	NegativePrompt string `json:"-"`

	// Width and Height are the requested output dimensions in pixels
	Width  int `json:"width"`
	Height int `json:"height"`

	// Aspect is the aspect ratio label ("4:5") for backends that take ratios
	Aspect string `json:"aspect,omitempty"`

	// Seed makes generation reproducible when the backend supports it
	Seed *int64 `json:"seed,omitempty"`

	// Model overrides the configured model
	Model string `json:"model,omitempty"`

	// ModelTier selects between the standard and premium configured models
	ModelTier string `json:"model_tier,omitempty"`

	// Style is an optional backend style preset
	Style string `json:"style,omitempty"`
}

// GenerateOutput is the adapter-boundary result.
type GenerateOutput struct {
	// OK is true when Data holds an image
	OK bool `json:"ok"`

	// Data is the raw image bytes
	Data []byte `json:"-"`

	// MIMEType is the content type of Data (image/png, image/jpeg, ...)
	MIMEType string `json:"mime_type,omitempty"`

	// ErrorCode is one of the Code* constants when OK is false
	ErrorCode string `json:"error_code,omitempty"`

	// ErrorMessageSafe is free of prompt content, keys and raw payloads
	ErrorMessageSafe string `json:"error_message,omitempty"`

	// Model is the model that served the request
	Model string `json:"model,omitempty"`
}

// Success builds a successful output.
func Success(data []byte, mimeType, model string) *GenerateOutput {
	if mimeType == "" {
		mimeType = "image/png"
	}
	return &GenerateOutput{OK: true, Data: data, MIMEType: mimeType, Model: model}
}

// ProviderHealth tracks the health status of a provider.
type ProviderHealth struct {
	// IsHealthy indicates whether the provider is currently healthy
	IsHealthy bool

	// LastCheck is the timestamp of the last health check
	LastCheck time.Time

	// LastError is the most recent error encountered (nil if healthy)
	LastError error

	// ConsecutiveFailures counts sequential failures
	ConsecutiveFailures int

	// LastSuccessfulRequest is the timestamp of the last successful request
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of requests sent to this provider
	TotalRequests int64

	// FailedRequests is the total number of failed requests
	FailedRequests int64
}

// ProviderConfig contains configuration for a single provider instance.
// This is a subset of config.ProviderConfig with only the fields needed by adapters.
type ProviderConfig struct {
	// Name is the provider identifier used by decisions (e.g., "gemini")
	Name string

	// Type is the adapter type (gemini, imagen, seedream, stub)
	Type string

	// BaseURL is the API endpoint base URL
	BaseURL string

	// APIKey is the authentication key
	APIKey string

	// Model is the standard-tier model identifier
	Model string

	// PremiumModel is the premium-tier model identifier (Model when empty)
	PremiumModel string

	// Timeout is the hard per-call timeout
	Timeout time.Duration

	// HealthCheckInterval is how often to run background health checks (0 disables)
	HealthCheckInterval time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration

	// Watermark asks backends that support it to add a provenance watermark
	Watermark bool
}

// ModelFor returns the configured model for a tier, honouring an explicit
// input override.
func (c ProviderConfig) ModelFor(in *GenerateInput) string {
	if in != nil && in.Model != "" {
		return in.Model
	}
	if in != nil && strings.EqualFold(in.ModelTier, "premium") && c.PremiumModel != "" {
		return c.PremiumModel
	}
	return c.Model
}

// EffectiveTimeout returns the configured timeout or DefaultTimeout.
func (c ProviderConfig) EffectiveTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Provider type constants
const (
	TypeGemini   = "gemini"
	TypeImagen   = "imagen"
	TypeSeedream = "seedream"
	TypeStub     = "stub"
)
