package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testConfig(url string) ProviderConfig {
	return ProviderConfig{
		Name:    "test-provider",
		Type:    TypeGemini,
		BaseURL: url,
		Timeout: 2 * time.Second,
	}
}

func TestHTTPProvider_SingleAttemptOn5xx(t *testing.T) {
	attemptCount := int32(0)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attemptCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "internal server error"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(testConfig(server.URL))
	defer provider.Close()

	resp, err := provider.DoRequest(context.Background(), "POST", server.URL+"/test", []byte(`{}`), nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err == nil {
		t.Fatal("expected error on 500")
	}

	if got := atomic.LoadInt32(&attemptCount); got != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", got)
	}
}

func TestHTTPProvider_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		check      func(error) bool
	}{
		{"401 unauthorized", http.StatusUnauthorized, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e) && e.StatusCode == 401
		}},
		{"403 forbidden", http.StatusForbidden, func(err error) bool {
			var e *AuthError
			return errors.As(err, &e)
		}},
		{"429 rate limited", http.StatusTooManyRequests, func(err error) bool {
			var e *RateLimitError
			return errors.As(err, &e) && e.RetryAfter == 30*time.Second
		}},
		{"400 bad request", http.StatusBadRequest, func(err error) bool {
			var e *ProviderError
			return errors.As(err, &e) && e.StatusCode == 400
		}},
		{"503 unavailable", http.StatusServiceUnavailable, func(err error) bool {
			var e *ProviderError
			return errors.As(err, &e) && e.StatusCode == 503
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(`{"error": {"message": "secret-body-content"}}`))
			}))
			defer server.Close()

			provider := NewHTTPProvider(testConfig(server.URL))
			defer provider.Close()

			_, err := provider.DoRequest(context.Background(), "POST", server.URL, []byte(`{}`), nil)
			if !tt.check(err) {
				t.Fatalf("unexpected error type: %T %v", err, err)
			}
			if strings.Contains(err.Error(), "secret-body-content") {
				t.Errorf("error leaks response body: %v", err)
			}
		})
	}
}

func TestHTTPProvider_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	provider := NewHTTPProvider(testConfig(server.URL))
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := provider.DoRequest(ctx, "POST", server.URL, []byte(`{}`), nil)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %T: %v", err, err)
	}
}

func TestHTTPProvider_Cancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	provider := NewHTTPProvider(testConfig(server.URL))
	defer provider.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := provider.DoRequest(ctx, "POST", server.URL, []byte(`{}`), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %T: %v", err, err)
	}
}

func TestHTTPProvider_DoJSONRequest(t *testing.T) {
	t.Run("decodes body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
			}
			_, _ = w.Write([]byte(`{"value": 42}`))
		}))
		defer server.Close()

		provider := NewHTTPProvider(testConfig(server.URL))
		defer provider.Close()

		var out struct {
			Value int `json:"value"`
		}
		if err := provider.DoJSONRequest(context.Background(), "POST", server.URL, map[string]string{"a": "b"}, &out, nil); err != nil {
			t.Fatalf("DoJSONRequest: %v", err)
		}
		if out.Value != 42 {
			t.Errorf("Value = %d", out.Value)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		provider := NewHTTPProvider(testConfig(server.URL))
		defer provider.Close()

		var out map[string]any
		err := provider.DoJSONRequest(context.Background(), "POST", server.URL, nil, &out, nil)
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %T: %v", err, err)
		}
	})
}

func TestHTTPProvider_Download(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(png)
	}))
	defer server.Close()

	provider := NewHTTPProvider(testConfig(server.URL))
	defer provider.Close()

	data, ct, err := provider.Download(context.Background(), server.URL+"/img.png")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(data) != string(png) {
		t.Errorf("data = %q", data)
	}
	if ct != "image/png" {
		t.Errorf("content type = %q, want sniffed image/png", ct)
	}
}

func TestHTTPProvider_RequestCounters(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := NewHTTPProvider(testConfig(server.URL))
	defer provider.Close()

	for i := 0; i < 3; i++ {
		resp, err := provider.DoRequest(context.Background(), "GET", server.URL, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	fail.Store(true)
	_, _ = provider.DoRequest(context.Background(), "GET", server.URL, nil, nil)

	h := provider.GetHealth()
	if h.TotalRequests != 4 || h.FailedRequests != 1 {
		t.Errorf("counters total=%d failed=%d, want 4/1", h.TotalRequests, h.FailedRequests)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("empty header = %v", got)
	}
	if got := parseRetryAfter("12"); got != 12*time.Second {
		t.Errorf("seconds header = %v", got)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Minute {
		t.Errorf("date header = %v", got)
	}
}
