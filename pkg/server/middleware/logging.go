package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// accessRecord collects what the access log line reports about one HTTP
// request. Handlers add the image request fields through Annotate.
type accessRecord struct {
	start   time.Time
	status  int
	bytes   int
	written bool

	requestID string
	outcome   string
}

// recordingWriter captures status and size into an accessRecord.
type recordingWriter struct {
	http.ResponseWriter
	rec *accessRecord
}

func (w *recordingWriter) WriteHeader(code int) {
	if w.rec.written {
		return
	}
	w.rec.status = code
	w.rec.written = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if !w.rec.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.rec.bytes += n
	return n, err
}

// Annotate attaches the image request id and its outcome to the access
// log line of the current HTTP request. Empty values are ignored. It is a
// no-op outside LoggingMiddleware.
func Annotate(ctx context.Context, requestID, outcome string) {
	rec, ok := ctx.Value(accessKey).(*accessRecord)
	if !ok {
		return
	}
	if requestID != "" {
		rec.requestID = requestID
	}
	if outcome != "" {
		rec.outcome = outcome
	}
}

// LoggingMiddleware writes one access log line per HTTP request. Besides
// method, path, status and latency it carries the X-Request-ID as
// http_request_id and, for image routes, the body's request_id and outcome
// so an access line joins the audit trail. Bodies are never logged.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &accessRecord{start: time.Now(), status: http.StatusOK}
		ctx := context.WithValue(r.Context(), accessKey, rec)

		next.ServeHTTP(&recordingWriter{ResponseWriter: w, rec: rec}, r.WithContext(ctx))

		level := slog.LevelInfo
		switch {
		case rec.status >= 500:
			level = slog.LevelError
		case rec.status >= 400:
			level = slog.LevelWarn
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(rec.start).Milliseconds(),
			"http_request_id", w.Header().Get(RequestIDHeader),
		}
		if rec.requestID != "" {
			attrs = append(attrs, "request_id", rec.requestID)
		}
		if rec.outcome != "" {
			attrs = append(attrs, "outcome", rec.outcome)
		}
		slog.Log(ctx, level, "http request", attrs...)
	})
}

// GetStartTime returns when LoggingMiddleware started handling the request,
// or the zero time outside it.
func GetStartTime(ctx context.Context) time.Time {
	if rec, ok := ctx.Value(accessKey).(*accessRecord); ok {
		return rec.start
	}
	return time.Time{}
}
