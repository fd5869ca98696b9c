// Package seedream implements the Provider interface with the Volcengine Ark
// runtime SDK (Seedream text-to-image models).
//
// The adapter asks for URL output and downloads the image through the pooled
// HTTP client, so the engine always receives raw bytes.
package seedream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
	"github.com/volcengine/volcengine-go-sdk/volcengine"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

const (
	// DefaultBaseURL is the Ark runtime endpoint
	DefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

	// DefaultModel is the Seedream model used when none is configured
	DefaultModel = "doubao-seedream-4-0-250828"
)

// Provider is the Seedream adapter.
type Provider struct {
	*providers.HTTPProvider
	client *arkruntime.Client
}

// NewProvider creates a new Seedream provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: providers.TypeSeedream,
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Seedream",
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Model == "" {
		config.Model = DefaultModel
	}

	client := arkruntime.NewClientWithApiKey(
		config.APIKey,
		arkruntime.WithBaseUrl(config.BaseURL),
	)

	slog.Info("Seedream provider initialized",
		"provider", config.Name,
		"base_url", config.BaseURL,
		"model", config.Model,
	)

	return &Provider{
		HTTPProvider: providers.NewHTTPProvider(config),
		client:       client,
	}, nil
}

// Generate requests one image and downloads it.
func (p *Provider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	cfg := p.GetConfig()
	ctx, cancel := context.WithTimeout(ctx, cfg.EffectiveTimeout())
	defer cancel()

	m := cfg.ModelFor(in)
	req := model.GenerateImagesRequest{
		Model:          m,
		Prompt:         in.Prompt,
		Size:           volcengine.String(fmt.Sprintf("%dx%d", in.Width, in.Height)),
		ResponseFormat: volcengine.String(model.GenerateImagesResponseFormatURL),
		Watermark:      volcengine.Bool(cfg.Watermark),
	}
	if in.Seed != nil {
		req.Seed = volcengine.Int64(*in.Seed)
	}

	resp, err := p.client.GenerateImages(ctx, req)
	if err != nil {
		err = translateError(ctx, cfg, err)
		p.RecordOutcome(err)
		return providers.Failure(cfg.Name, err)
	}
	if resp.Error != nil {
		err = apiError(cfg.Name, resp.Error.Code)
		p.RecordOutcome(err)
		return providers.Failure(cfg.Name, err)
	}

	imageURL := ""
	for i := range resp.Data {
		if u := resp.Data[i].Url; u != nil && *u != "" {
			imageURL = *u
			break
		}
	}
	if imageURL == "" {
		err = &providers.NoImageError{Provider: cfg.Name}
		p.RecordOutcome(err)
		return providers.Failure(cfg.Name, err)
	}

	data, mime, err := p.Download(ctx, imageURL)
	if err != nil {
		return providers.Failure(cfg.Name, err)
	}
	return providers.Success(data, mime, m)
}

// HealthCheck reports the tracked request health.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if h := p.GetHealth(); !h.IsHealthy {
		return h.LastError
	}
	return nil
}

// apiError maps an Ark error code. Content moderation codes mean the
// backend refused to produce an image.
func apiError(provider, code string) error {
	if strings.Contains(code, "SensitiveContent") {
		return &providers.NoImageError{Provider: provider, Reason: "CONTENT_FILTERED"}
	}
	return &providers.ProviderError{Provider: provider, Message: "api error"}
}

func translateError(ctx context.Context, cfg providers.ProviderConfig, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &providers.TimeoutError{Provider: cfg.Name, Timeout: cfg.EffectiveTimeout()}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}
	return &providers.ProviderError{Provider: cfg.Name, Message: "sdk error", Cause: err}
}
