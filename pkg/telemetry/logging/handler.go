package logging

import (
	"context"
	"log/slog"
)

// Handler is a slog.Handler that redacts attributes and adds context fields
// before delegating to an inner handler.
type Handler struct {
	inner     slog.Handler
	redactor  *Redactor
	fragments []string
}

// NewHandler wraps inner. A nil redactor uses the default patterns.
func NewHandler(inner slog.Handler, redactor *Redactor) *Handler {
	if redactor == nil {
		redactor = NewRedactor(nil)
	}
	return &Handler{inner: inner, redactor: redactor}
}

// Enabled reports whether the inner handler handles level.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the record and passes it on.
func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.redactor.scrub(r.Message, h.fragments), r.PC)
	out.AddAttrs(contextAttrs(ctx)...)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactor.RedactAttr(a, h.fragments))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs redacts attrs once and binds them to the inner handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactor.RedactAttr(a, h.fragments)
	}
	clone := *h
	clone.inner = h.inner.WithAttrs(redacted)
	return &clone
}

// WithGroup opens a group on the inner handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.inner = h.inner.WithGroup(name)
	return &clone
}

// WithFragments returns a handler that also masks the given fragments.
func (h *Handler) WithFragments(fragments []string) *Handler {
	clone := *h
	clone.fragments = append(append([]string(nil), h.fragments...), fragments...)
	return &clone
}
