package providers

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

// TestConfig returns a test provider configuration.
func TestConfig(name, providerType string) providers.ProviderConfig {
	return providers.ProviderConfig{
		Name:                name,
		Type:                providerType,
		BaseURL:             "http://localhost:8080",
		APIKey:              "test-key",
		Model:               "test-image-model",
		PremiumModel:        "test-image-model-pro",
		Timeout:             5 * time.Second,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     30 * time.Second,
	}
}

// TestConfigWithURL returns a test config with a specific base URL.
func TestConfigWithURL(name, providerType, baseURL string) providers.ProviderConfig {
	config := TestConfig(name, providerType)
	config.BaseURL = baseURL
	return config
}

// TestInput creates a generate input for a 4:5 image.
func TestInput(prompt string) *providers.GenerateInput {
	return &providers.GenerateInput{
		Prompt: prompt,
		Width:  1024,
		Height: 1280,
		Aspect: "4:5",
	}
}

// TinyPNG returns a valid 2x2 PNG.
func TinyPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
