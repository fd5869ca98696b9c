package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
	Seed               *int64       `json:"seed,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type generateResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
}

type candidate struct {
	Content      *content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// transformRequest builds the generateContent body.
func transformRequest(in *providers.GenerateInput) *generateRequest {
	req := &generateRequest{
		Contents: []content{{
			Role:  "user",
			Parts: []part{{Text: in.Prompt}},
		}},
		GenerationConfig: generationConfig{
			ResponseModalities: []string{"IMAGE"},
			Seed:               in.Seed,
		},
	}
	if in.Aspect != "" {
		req.GenerationConfig.ImageConfig = &imageConfig{AspectRatio: in.Aspect}
	}
	return req
}

// extractImage returns the first inline image of the response.
func extractImage(provider string, resp *generateResponse) ([]byte, string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, "", &providers.NoImageError{Provider: provider, Reason: reasonLabel(resp.PromptFeedback.BlockReason)}
	}

	finish := ""
	for _, c := range resp.Candidates {
		if finish == "" {
			finish = c.FinishReason
		}
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, "", &providers.ParseError{
					Provider: provider,
					Cause:    fmt.Errorf("invalid inline image encoding: %w", err),
				}
			}
			mime := p.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return data, mime, nil
		}
	}

	if len(resp.Candidates) == 0 {
		return nil, "", &providers.NoImageError{Provider: provider, Reason: "no candidates"}
	}
	return nil, "", &providers.NoImageError{Provider: provider, Reason: reasonLabel(finish)}
}

// reasonLabel keeps only enum-like characters of a provider reason.
func reasonLabel(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || r == '_' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, strings.ToUpper(s))
}
