package providers

import "context"

// Provider is the interface every image generation adapter implements.
//
// Generate never returns a Go error. Transport failures, API errors, parse
// failures and timeouts are translated into a GenerateOutput carrying an error
// code and a message that is safe to show to callers. The prompt in the input
// is held only for the duration of the call.
//
// Implementations must respect context cancellation and return promptly when
// the context is done.
//
// Example usage:
//
//	out := provider.Generate(ctx, &GenerateInput{
//	    Prompt: assembled,
//	    Width:  1024,
//	    Height: 1280,
//	})
//	if !out.OK {
//	    return out.ErrorCode
//	}
type Provider interface {
	// Generate produces one image for the input.
	Generate(ctx context.Context, in *GenerateInput) *GenerateOutput

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// GetName returns the provider's configured name (e.g., "gemini", "stub").
	GetName() string

	// GetType returns the provider's type (gemini, imagen, seedream, stub).
	GetType() string

	// IsHealthy returns the current health status of the provider.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases any resources (HTTP connections, SDK clients).
	Close() error
}
