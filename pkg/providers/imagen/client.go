// Package imagen implements the Provider interface with the Google Gen AI SDK
// (google.golang.org/genai) and its Imagen GenerateImages call.
package imagen

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

// DefaultModel is the Imagen model used when none is configured.
const DefaultModel = "imagen-4.0-generate-001"

// Provider is the Imagen adapter.
type Provider struct {
	*providers.HTTPProvider
	client *genai.Client
}

// NewProvider creates a new Imagen provider instance.
func NewProvider(ctx context.Context, config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: providers.TypeImagen,
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Imagen",
		}
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	base := providers.NewHTTPProvider(config)

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: base.Client(),
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "client",
			Message:  "failed to create genai client",
		}
	}

	slog.Info("Imagen provider initialized",
		"provider", config.Name,
		"model", config.Model,
	)

	return &Provider{HTTPProvider: base, client: client}, nil
}

// Generate requests one image through Models.GenerateImages.
func (p *Provider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	cfg := p.GetConfig()
	ctx, cancel := context.WithTimeout(ctx, cfg.EffectiveTimeout())
	defer cancel()

	model := cfg.ModelFor(in)
	resp, err := p.client.Models.GenerateImages(ctx, model, in.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      in.Aspect,
		PersonGeneration: genai.PersonGenerationDontAllow,
		IncludeRAIReason: true,
	})
	if err != nil {
		err = translateError(ctx, cfg, err)
		p.RecordOutcome(err)
		return providers.Failure(cfg.Name, err)
	}

	data, mime, err := imageFromResponse(cfg.Name, resp)
	p.RecordOutcome(err)
	if err != nil {
		return providers.Failure(cfg.Name, err)
	}
	return providers.Success(data, mime, model)
}

// HealthCheck reports the tracked request health; the SDK has no cheap check endpoint.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if h := p.GetHealth(); !h.IsHealthy {
		return h.LastError
	}
	return nil
}

func imageFromResponse(provider string, resp *genai.GenerateImagesResponse) ([]byte, string, error) {
	if resp == nil {
		return nil, "", &providers.ParseError{Provider: provider, Cause: errors.New("empty response")}
	}

	reason := ""
	for _, gi := range resp.GeneratedImages {
		if gi == nil {
			continue
		}
		if gi.Image != nil && len(gi.Image.ImageBytes) > 0 {
			mime := gi.Image.MIMEType
			if mime == "" {
				mime = http.DetectContentType(gi.Image.ImageBytes)
			}
			return gi.Image.ImageBytes, mime, nil
		}
		if gi.RAIFilteredReason != "" {
			reason = "RAI_FILTERED"
		}
	}
	return nil, "", &providers.NoImageError{Provider: provider, Reason: reason}
}

// translateError maps SDK errors onto the typed provider errors. API error
// messages are dropped; only the status code survives.
func translateError(ctx context.Context, cfg providers.ProviderConfig, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &providers.TimeoutError{Provider: cfg.Name, Timeout: cfg.EffectiveTimeout()}
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &providers.AuthError{Provider: cfg.Name, StatusCode: apiErr.Code}
		case http.StatusTooManyRequests:
			return &providers.RateLimitError{Provider: cfg.Name}
		}
		return &providers.ProviderError{
			Provider:   cfg.Name,
			StatusCode: apiErr.Code,
			Message:    http.StatusText(apiErr.Code),
		}
	}
	return &providers.ProviderError{Provider: cfg.Name, Message: "sdk error", Cause: err}
}
