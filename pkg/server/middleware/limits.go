package middleware

import (
	"net/http"
)

// BodyLimitMiddleware caps request bodies at maxBytes. Requests that
// declare a larger Content-Length are rejected with 413 before the handler
// runs; others are wrapped in http.MaxBytesReader so that reading past the
// limit fails. A limit of zero or less disables the check.
//
// Example usage:
//
//	handler = BodyLimitMiddleware(64 << 10)(handler)
func BodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge,
					"request body exceeds the configured limit")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
