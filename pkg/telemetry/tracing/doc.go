// Package tracing provides OpenTelemetry tracing for the imagery engine.
//
// Every Generate call opens a root span "imagery.generate" with one child
// span per stage (decide, assemble, size, provider, storage, alt_text).
// Spans carry request identity, the resolved decision and result codes.
// Prompt text, variables and overlay copy are never attached.
//
// # Export
//
// Spans are exported over OTLP gRPC to TracingConfig.Endpoint. When tracing
// is disabled, New returns a noop tracer and Start costs almost nothing.
//
// # Sampling
//
//   - always: sample every trace
//   - never: sample nothing
//   - ratio: sample SampleRatio of new traces
//
// All samplers are parent based, so a sampled upstream request keeps its
// children sampled.
//
// # Propagation
//
// HTTPMiddleware extracts W3C traceparent headers from incoming requests:
//
//	handler = tracing.HTTPMiddleware(handler)
package tracing
