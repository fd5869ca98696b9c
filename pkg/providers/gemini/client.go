package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

const (
	// DefaultBaseURL is the public Gemini API endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the image-capable model used when none is configured
	DefaultModel = "gemini-2.5-flash-image"

	apiKeyHeader = "x-goog-api-key"
)

// Provider is the Gemini REST adapter.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Gemini provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: providers.TypeGemini,
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Gemini",
		}
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	p := &Provider{HTTPProvider: providers.NewHTTPProvider(config)}
	p.SetHealthEndpoint(config.BaseURL+"/v1beta/models?pageSize=1", p.headers())

	slog.Info("Gemini provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return p, nil
}

// Generate sends one generateContent request and returns the first image.
func (p *Provider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	cfg := p.GetConfig()
	ctx, cancel := context.WithTimeout(ctx, cfg.EffectiveTimeout())
	defer cancel()

	model := cfg.ModelFor(in)
	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", cfg.BaseURL, url.PathEscape(model))

	var resp generateResponse
	if err := p.DoJSONRequest(ctx, "POST", endpoint, transformRequest(in), &resp, p.headers()); err != nil {
		return providers.Failure(cfg.Name, err)
	}

	data, mime, err := extractImage(cfg.Name, &resp)
	if err != nil {
		return providers.Failure(cfg.Name, err)
	}

	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return providers.Success(data, mime, model)
}

func (p *Provider) headers() map[string]string {
	return map[string]string{apiKeyHeader: p.GetConfig().APIKey}
}
