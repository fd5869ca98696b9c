package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/logging"
)

const (
	// RequestIDHeader is the HTTP header for request ID.
	RequestIDHeader = "X-Request-ID"

	// maxRequestIDLength bounds a client supplied request id.
	maxRequestIDLength = 128
)

// RequestIDMiddleware assigns every HTTP request an id. A client supplied
// X-Request-ID is reused when it is short enough; otherwise a UUID is
// generated.
//
// This id correlates HTTP logs. It is independent of the requestId inside
// an image request body, which is the audit upsert key.
//
// Example usage:
//
//	handler = RequestIDMiddleware(handler)
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.WithHTTPRequestID(ctx, requestID)

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
