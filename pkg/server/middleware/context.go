package middleware

type contextKey string

const (
	// RequestIDKey stores the HTTP request ID.
	RequestIDKey contextKey = "http_request_id"

	// accessKey stores the *accessRecord of LoggingMiddleware.
	accessKey contextKey = "access_record"
)
