package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys. Prompt text, variables and overlay copy are never
// attached to spans.
const (
	AttrRequestID   = "imagery.request_id"
	AttrConsumerApp = "imagery.consumer_app"
	AttrPlatform    = "imagery.platform"
	AttrCategory    = "imagery.category"
	AttrStage       = "imagery.stage"
	AttrMode        = "imagery.mode"
	AttrProvider    = "imagery.provider"
	AttrModelTier   = "imagery.model_tier"
	AttrBackend     = "imagery.storage_backend"
	AttrWidth       = "imagery.width"
	AttrHeight      = "imagery.height"
	AttrResultCode  = "imagery.result_code"
	AttrFallback    = "imagery.fallback_reason"
)

// RequestAttributes describes the incoming request on the root span.
func RequestAttributes(requestID, consumerApp, platform, category string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrRequestID, requestID),
		attribute.String(AttrConsumerApp, consumerApp),
		attribute.String(AttrPlatform, platform),
		attribute.String(AttrCategory, category),
	}
}

// SetDecisionAttributes records the resolved decision fields.
func SetDecisionAttributes(span trace.Span, mode, provider, modelTier string) {
	span.SetAttributes(
		attribute.String(AttrMode, mode),
		attribute.String(AttrProvider, provider),
		attribute.String(AttrModelTier, modelTier),
	)
}

// SetSizeAttributes records output pixel dimensions.
func SetSizeAttributes(span trace.Span, width, height int) {
	span.SetAttributes(
		attribute.Int(AttrWidth, width),
		attribute.Int(AttrHeight, height),
	)
}

// SetFallback records why a request fell back.
func SetFallback(span trace.Span, reason string) {
	span.SetAttributes(attribute.String(AttrFallback, reason))
}
