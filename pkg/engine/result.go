package engine

import (
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// Result codes. Provider and storage codes are produced by their adapters
// and re-exported here so callers only need this package.
const (
	CodeSafetyBlocked       = "SAFETY_BLOCKED"
	CodeProviderError       = providers.CodeProviderError
	CodeProviderHTTPError   = providers.CodeProviderHTTPError
	CodeProviderBadResponse = providers.CodeProviderBadResponse
	CodeProviderTimeout     = providers.CodeProviderTimeout
	CodeNoImageReturned     = providers.CodeNoImageReturned
	CodeStorageError        = storage.CodeStorageError
	CodeStorageWriteError   = storage.CodeStorageWriteError
	CodeStorageAuthError    = storage.CodeStorageAuthError
	CodeUnexpectedError     = "UNEXPECTED_ERROR"
)

// Fallback reasons.
const (
	ReasonSafetyBlocked   = "safety_blocked"
	ReasonProviderFailed  = "provider_failed"
	ReasonStorageFailed   = "storage_failed"
	ReasonUnexpectedError = "unexpected_error"
)

// Stage names, used as timing keys, span names and metric labels.
const (
	StageDecide   = "decide"
	StageAssemble = "assemble"
	StageSize     = "size"
	StageProvider = "provider"
	StageStorage  = "storage"
	StageAltText  = "alt_text"
	StageTotal    = "total"
)

// Outcomes recorded in the generations metric.
const (
	OutcomeGenerated  = "generated"
	OutcomeSkipped    = "skipped"
	OutcomeFallback   = "fallback"
	OutcomeUnexpected = "failed"
)

// GenerationResult is the only thing Generate returns.
//
// OK is true exactly when Image is set; Fallback and Error are then nil.
// When OK is false, Image is nil and both Fallback and Error are set.
type GenerationResult struct {
	RequestID string           `json:"requestId"`
	OK        bool             `json:"ok"`
	Decision  types.Decision   `json:"decision"`
	Image     *Image           `json:"image,omitempty"`
	Fallback  *Fallback        `json:"fallback,omitempty"`
	Error     *Error           `json:"error,omitempty"`
	TimingsMs map[string]int64 `json:"timingsMs"`
}

// Image describes a stored image.
type Image struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ContentType string `json:"contentType"`
	AltText     string `json:"altText"`
}

// Fallback tells the caller to use its own non-generated imagery.
type Fallback struct {
	Used   bool   `json:"used"`
	Reason string `json:"reason"`
}

// Error carries a result code and a message free of prompt text,
// credentials and provider payloads.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// timings accumulates per-stage durations in milliseconds.
type timings map[string]int64

func (t timings) add(stage string, d time.Duration) {
	t[stage] += d.Milliseconds()
}

// total sums every stage into StageTotal and returns the map.
func (t timings) total() map[string]int64 {
	var sum int64
	for stage, ms := range t {
		if stage != StageTotal {
			sum += ms
		}
	}
	t[StageTotal] = sum
	return t
}

func success(d types.Decision, img *Image, t timings) *GenerationResult {
	return &GenerationResult{
		RequestID: d.RequestID,
		OK:        true,
		Decision:  d,
		Image:     img,
		TimingsMs: t.total(),
	}
}

func failure(d types.Decision, reason, code, message string, t timings) *GenerationResult {
	return &GenerationResult{
		RequestID: d.RequestID,
		OK:        false,
		Decision:  d,
		Fallback:  &Fallback{Used: true, Reason: reason},
		Error:     &Error{Code: code, Message: message},
		TimingsMs: t.total(),
	}
}
