package seedream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	testhelpers "github.com/acemetillidie0001/obd-premium-apps-sub006/internal/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

func TestSeedreamProvider_Generate(t *testing.T) {
	png := testhelpers.TinyPNG()

	var gotBody map[string]any
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/images/generations", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "seedream-test",
			"created": 1,
			"data":    []map[string]any{{"url": server.URL + "/files/out.png", "size": "1024x1280"}},
		})
	})
	mux.HandleFunc("/files/out.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	})

	p, err := NewProvider(providers.ProviderConfig{
		Name:    "seedream",
		Type:    providers.TypeSeedream,
		BaseURL: server.URL,
		APIKey:  "k",
		Model:   "seedream-test",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	defer p.Close()

	out := p.Generate(context.Background(), testhelpers.TestInput("calm abstract waves"))
	if !out.OK {
		t.Fatalf("Generate failed: %s %s", out.ErrorCode, out.ErrorMessageSafe)
	}
	if string(out.Data) != string(png) || out.MIMEType != "image/png" {
		t.Errorf("unexpected image: %d bytes, %q", len(out.Data), out.MIMEType)
	}
	if gotBody["size"] != "1024x1280" || gotBody["response_format"] != "url" {
		t.Errorf("request body = %v", gotBody)
	}
}

func TestAPIError(t *testing.T) {
	code, _ := providers.Classify(apiError("seedream", "OutputImageSensitiveContentDetected"))
	if code != providers.CodeNoImageReturned {
		t.Errorf("moderation code = %q", code)
	}
	code, msg := providers.Classify(apiError("seedream", "InvalidParameter"))
	if code != providers.CodeProviderError || strings.Contains(msg, "InvalidParameter") {
		t.Errorf("generic api error = %q %q", code, msg)
	}
}

func TestTranslateError_Deadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := translateError(ctx, providers.ProviderConfig{Name: "seedream"}, errors.New("x"))
	var timeoutErr *providers.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T", err)
	}
	if timeoutErr.Timeout != providers.DefaultTimeout {
		t.Errorf("Timeout = %v, want default", timeoutErr.Timeout)
	}
}

func TestNewProvider_Validation(t *testing.T) {
	var cfgErr *providers.ConfigError
	if _, err := NewProvider(providers.ProviderConfig{Name: "seedream"}); !errors.As(err, &cfgErr) || cfgErr.Field != "api_key" {
		t.Errorf("expected api_key ConfigError, got %v", err)
	}
	p, err := NewProvider(providers.ProviderConfig{Name: "seedream", APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	if p.GetConfig().BaseURL != DefaultBaseURL || p.GetConfig().Model != DefaultModel {
		t.Errorf("defaults not applied: %+v", p.GetConfig())
	}
}
