package logging

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// ProviderKey is the context key for provider ids.
	ProviderKey contextKey = "provider"

	// ConsumerAppKey is the context key for the calling application.
	ConsumerAppKey contextKey = "consumer_app"

	// TraceIDKey is the context key for trace IDs.
	TraceIDKey contextKey = "trace_id"

	// HTTPRequestIDKey is the context key for the id of an HTTP request,
	// as opposed to the requestId of an image request.
	HTTPRequestIDKey contextKey = "http_request_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithProvider adds a provider id to the context.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, ProviderKey, provider)
}

// GetProvider retrieves the provider id from the context.
func GetProvider(ctx context.Context) string {
	if v, ok := ctx.Value(ProviderKey).(string); ok {
		return v
	}
	return ""
}

// WithConsumerApp adds the calling application to the context.
func WithConsumerApp(ctx context.Context, app string) context.Context {
	return context.WithValue(ctx, ConsumerAppKey, app)
}

// GetConsumerApp retrieves the calling application from the context.
func GetConsumerApp(ctx context.Context) string {
	if v, ok := ctx.Value(ConsumerAppKey).(string); ok {
		return v
	}
	return ""
}

// WithTraceID adds a trace ID to the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
func GetTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(TraceIDKey).(string); ok {
		return v
	}
	return ""
}

// WithHTTPRequestID adds an HTTP request ID to the context.
func WithHTTPRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, HTTPRequestIDKey, id)
}

// GetHTTPRequestID retrieves the HTTP request ID from the context.
func GetHTTPRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(HTTPRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// contextAttrs extracts the logging fields carried by ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if v := GetRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String("request_id", v))
	}
	if v := GetConsumerApp(ctx); v != "" {
		attrs = append(attrs, slog.String("consumer_app", v))
	}
	if v := GetProvider(ctx); v != "" {
		attrs = append(attrs, slog.String("provider", v))
	}
	if v := GetTraceID(ctx); v != "" {
		attrs = append(attrs, slog.String("trace_id", v))
	}
	if v := GetHTTPRequestID(ctx); v != "" {
		attrs = append(attrs, slog.String("http_request_id", v))
	}
	return attrs
}
