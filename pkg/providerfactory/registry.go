package providerfactory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/stub"
)

// Registry holds the configured providers.
//
// A registry always contains a stub under stub.Name, and Get routes ids it
// does not know to that stub. Registry is safe for concurrent use; it is
// read-only after Load except for Add and Close.
type Registry struct {
	providers map[string]providers.Provider
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewRegistry creates a registry holding only the stub provider.
func NewRegistry() *Registry {
	ctx, cancel := context.WithCancel(context.Background())

	return &Registry{
		providers: map[string]providers.Provider{
			stub.Name: stub.New(stub.Name, stub.Options{}),
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

// Load builds a registry from configurations. Every provider is attempted;
// failures are joined into the returned error and the registry still holds
// the providers that could be built.
func Load(configs []providers.ProviderConfig) (*Registry, error) {
	r := NewRegistry()

	var errs []error
	for _, config := range configs {
		if err := r.AddConfig(config); err != nil {
			errs = append(errs, err)
			slog.Error("failed to load provider",
				"name", config.Name,
				"error", err,
			)
		}
	}

	slog.Info("providers loaded", "count", r.Count(), "failed", len(errs))
	return r, errors.Join(errs...)
}

// AddConfig creates a provider from config and adds it.
func (r *Registry) AddConfig(config providers.ProviderConfig) error {
	provider, err := NewProviderWithHealthCheck(r.ctx, config)
	if err != nil {
		return fmt.Errorf("failed to add provider %q: %w", config.Name, err)
	}
	r.Add(provider)
	return nil
}

// Add registers a provider under its name, closing any provider it replaces.
func (r *Registry) Add(provider providers.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.GetName()
	if existing, ok := r.providers[name]; ok && existing != provider {
		slog.Warn("replacing existing provider", "name", name)
		if err := existing.Close(); err != nil {
			slog.Error("error closing provider", "name", name, "error", err)
		}
	}
	r.providers[name] = provider
}

// Get returns the provider registered under id, or the stub when id is
// unknown or empty.
func (r *Registry) Get(id string) providers.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if provider, ok := r.providers[id]; ok {
		return provider
	}
	if id != "" {
		slog.Warn("unknown provider id, using stub", "provider", id)
	}
	return r.providers[stub.Name]
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[id]
	return ok
}

// Names returns the registered ids in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered providers, the stub included.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Close stops health checkers and closes every provider.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cancel()

	var errs []error
	for name, provider := range r.providers {
		if err := provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider %q: %w", name, err))
		}
	}
	r.providers = map[string]providers.Provider{}

	slog.Info("provider registry closed")
	return errors.Join(errs...)
}

// GetHealthSummary returns a summary of provider health status.
func (r *Registry) GetHealthSummary() HealthSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := HealthSummary{
		Total:   len(r.providers),
		Details: make(map[string]providers.ProviderHealth, len(r.providers)),
	}
	for name, provider := range r.providers {
		health := provider.GetHealth()
		health.IsHealthy = provider.IsHealthy()
		summary.Details[name] = health
		if health.IsHealthy {
			summary.Healthy++
		}
	}
	summary.Unhealthy = summary.Total - summary.Healthy

	return summary
}

// HealthSummary provides an overview of provider health across the registry.
type HealthSummary struct {
	// Total is the total number of providers
	Total int

	// Healthy is the number of healthy providers
	Healthy int

	// Unhealthy is the number of unhealthy providers
	Unhealthy int

	// Details contains per-provider health information
	Details map[string]providers.ProviderHealth
}
