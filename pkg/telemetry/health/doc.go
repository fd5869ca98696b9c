// Package health provides liveness and readiness probes.
//
//   - /health: the process is running
//   - /ready: component checks (storage, audit store, providers)
//   - /version: build information
//
// Critical checks make /ready answer 503. Optional checks, such as provider
// health, only mark the service degraded because the engine still returns
// a valid fallback when a provider is down.
package health
