// Package middleware provides the HTTP middleware chain of the imagery
// service.
//
// The chain, outermost first:
//
//	RecoveryMiddleware -> LoggingMiddleware -> RequestIDMiddleware ->
//	tracing.HTTPMiddleware -> BodyLimitMiddleware -> routes
//
// Every middleware is an ordinary func(http.Handler) http.Handler or a
// plain wrapper, so the chain can be assembled in any order for tests.
//
// Errors written by this package use the JSON shape
//
//	{"error": {"code": "body_too_large", "message": "..."}}
//
// which is also used by the route handlers in package server.
package middleware
