// Package providers implements the abstraction layer over image generation
// backends.
//
// # Overview
//
// Every backend implements Provider. Generate takes an assembled prompt and
// the target dimensions and returns a GenerateOutput: either image bytes with
// a MIME type, or an error code with a message that is safe to show to
// callers. Adapters never return Go errors across this boundary and never
// put prompt text, API keys or raw provider payloads into messages.
//
// # Architecture
//
//  1. Provider Interface - the contract all adapters implement
//  2. Base HTTP Provider - pooled HTTP client, single-attempt requests,
//     typed status errors, health tracking
//  3. Adapters - gemini (REST), imagen (genai SDK), seedream (ark SDK), stub
//  4. Provider Factory - builds adapters from configuration and routes
//     unknown ids to the stub (package providerfactory)
//
// # Error Codes
//
//	PROVIDER_HTTP_ERROR    non-2xx response (auth, rate limit, 4xx, 5xx)
//	PROVIDER_BAD_RESPONSE  body could not be decoded
//	PROVIDER_TIMEOUT       hard timeout or caller deadline reached
//	NO_IMAGE_RETURNED      well-formed response without image data
//	PROVIDER_ERROR         anything else, including cancellation
//
// Classify and Failure perform this mapping; adapters return typed errors
// internally (AuthError, RateLimitError, TimeoutError, ParseError,
// NoImageError, ProviderError) and convert them once at the boundary.
//
// # Retries
//
// Requests are sent exactly once. A failed call produces a fallback result in
// the engine instead of a retry.
//
// # Basic Usage
//
//	provider, err := gemini.NewProvider(providers.ProviderConfig{
//	    Name:    "gemini",
//	    Type:    "gemini",
//	    APIKey:  os.Getenv("IMAGERY_PROVIDERS_GEMINI_API_KEY"),
//	    Model:   "gemini-2.5-flash-image",
//	    Timeout: 25 * time.Second,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	out := provider.Generate(ctx, &providers.GenerateInput{
//	    Prompt: assembled,
//	    Width:  1024,
//	    Height: 1280,
//	})
//
// # Health
//
// HTTPProvider tracks request outcomes and marks a provider unhealthy after
// three consecutive failures. StartHealthChecker runs periodic checks with
// exponential backoff while unhealthy; it is a no-op when no interval is
// configured. SetHealthObserver reports every change of state; the serve
// command feeds it into the provider_health gauge.
package providers
