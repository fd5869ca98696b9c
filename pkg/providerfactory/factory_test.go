package providerfactory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

func TestNewProvider_ByType(t *testing.T) {
	tests := []struct {
		name     string
		config   providers.ProviderConfig
		wantType string
	}{
		{
			name:     "gemini",
			config:   providers.ProviderConfig{Name: "gemini", Type: "gemini", APIKey: "k", Timeout: 5 * time.Second},
			wantType: providers.TypeGemini,
		},
		{
			name:     "imagen",
			config:   providers.ProviderConfig{Name: "imagen", Type: "imagen", APIKey: "k"},
			wantType: providers.TypeImagen,
		},
		{
			name:     "seedream",
			config:   providers.ProviderConfig{Name: "seedream", Type: "seedream", APIKey: "k"},
			wantType: providers.TypeSeedream,
		},
		{
			name:     "stub",
			config:   providers.ProviderConfig{Name: "offline", Type: "stub"},
			wantType: providers.TypeStub,
		},
		{
			name:     "inferred from name",
			config:   providers.ProviderConfig{Name: "gemini", APIKey: "k"},
			wantType: providers.TypeGemini,
		},
		{
			name:     "unknown name infers stub",
			config:   providers.ProviderConfig{Name: "local-dev"},
			wantType: providers.TypeStub,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(context.Background(), tt.config)
			if err != nil {
				t.Fatalf("NewProvider() failed: %v", err)
			}
			defer provider.Close()

			if provider.GetName() != tt.config.Name {
				t.Errorf("name = %q, want %q", provider.GetName(), tt.config.Name)
			}
			if provider.GetType() != tt.wantType {
				t.Errorf("type = %q, want %q", provider.GetType(), tt.wantType)
			}
		})
	}
}

func TestNewProvider_UnsupportedType(t *testing.T) {
	_, err := NewProvider(context.Background(), providers.ProviderConfig{Name: "x", Type: "dalle"})
	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "type" {
		t.Fatalf("expected type ConfigError, got %v", err)
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(context.Background(), providers.ProviderConfig{Name: "gemini", Type: "gemini"})
	var cfgErr *providers.ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "api_key" {
		t.Fatalf("expected api_key ConfigError, got %v", err)
	}
}
