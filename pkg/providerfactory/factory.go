// Package providerfactory builds image providers from configuration and keeps
// them in a registry the engine selects from by id.
package providerfactory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/gemini"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/imagen"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/seedream"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/stub"
)

// NewProvider creates a provider instance based on the configuration.
//
// Supported provider types:
//   - "gemini": Gemini generateContent REST API
//   - "imagen": Imagen through the Google GenAI SDK
//   - "seedream": Seedream through the Volcengine Ark runtime
//   - "stub": offline deterministic images
//
// When config.Type is empty it is inferred from the provider name, and
// unknown names fall back to the stub.
//
// Example:
//
//	provider, err := NewProvider(ctx, providers.ProviderConfig{
//	    Name:   "gemini",
//	    Type:   "gemini",
//	    APIKey: os.Getenv("GEMINI_API_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
func NewProvider(ctx context.Context, config providers.ProviderConfig) (providers.Provider, error) {
	providerType := config.Type
	if providerType == "" {
		providerType = inferProviderType(config.Name)
		config.Type = providerType
	}

	slog.Debug("creating provider",
		"name", config.Name,
		"type", providerType,
		"base_url", config.BaseURL,
	)

	var provider providers.Provider
	var err error

	switch providerType {
	case providers.TypeGemini:
		provider, err = gemini.NewProvider(config)

	case providers.TypeImagen:
		provider, err = imagen.NewProvider(ctx, config)

	case providers.TypeSeedream:
		provider, err = seedream.NewProvider(config)

	case providers.TypeStub:
		provider, err = stub.NewProvider(config)

	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: gemini, imagen, seedream, stub)", providerType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", config.Name, err)
	}

	slog.Info("provider created",
		"name", config.Name,
		"type", providerType,
	)

	return provider, nil
}

// NewProviderWithHealthCheck creates a provider and starts its background
// health checker when the adapter supports one. The checker stops when ctx
// is cancelled or the provider is closed.
func NewProviderWithHealthCheck(ctx context.Context, config providers.ProviderConfig) (providers.Provider, error) {
	provider, err := NewProvider(ctx, config)
	if err != nil {
		return nil, err
	}

	type healthCheckStarter interface {
		StartHealthChecker(context.Context)
	}

	if hcs, ok := provider.(healthCheckStarter); ok {
		hcs.StartHealthChecker(ctx)
		slog.Debug("health checker started", "provider", config.Name)
	}

	return provider, nil
}

func inferProviderType(name string) string {
	switch name {
	case providers.TypeGemini, providers.TypeImagen, providers.TypeSeedream:
		return name
	default:
		return providers.TypeStub
	}
}
