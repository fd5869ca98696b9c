package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates request ID when not provided", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		got := w.Header().Get(RequestIDHeader)
		if len(got) != 36 {
			t.Errorf("generated id %q is not a UUID", got)
		}
		if seen != got {
			t.Errorf("context id = %q, header id = %q", seen, got)
		}
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "custom-request-id-12345")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "custom-request-id-12345" {
			t.Errorf("Request ID = %v", got)
		}
	})

	t.Run("replaces oversized request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 500))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); len(got) != 36 {
			t.Errorf("oversized id was kept: %d chars", len(got))
		}
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		w1, w2 := httptest.NewRecorder(), httptest.NewRecorder()
		handler.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
		handler.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))
		if w1.Header().Get(RequestIDHeader) == w2.Header().Get(RequestIDHeader) {
			t.Error("request IDs should be unique")
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		wrapped := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("secret detail")
		}))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status code = %v, want %v", w.Code, http.StatusInternalServerError)
		}
		var body ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Error.Code != CodeInternalError {
			t.Errorf("code = %q", body.Error.Code)
		}
		if strings.Contains(body.Error.Message, "secret") {
			t.Error("panic value leaked into response")
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		wrapped := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("OK"))
		}))

		w := httptest.NewRecorder()
		wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		if w.Code != http.StatusOK || w.Body.String() != "OK" {
			t.Errorf("got %d %q", w.Code, w.Body.String())
		}
	})
}

func TestBodyLimitMiddleware(t *testing.T) {
	handler := BodyLimitMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			WriteError(w, http.StatusRequestEntityTooLarge, CodeBodyTooLarge, "too large")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		body    string
		chunked bool
		want    int
	}{
		{"within limit", "small", false, http.StatusNoContent},
		{"declared too large", strings.Repeat("a", 32), false, http.StatusRequestEntityTooLarge},
		{"undeclared too large", strings.Repeat("a", 32), true, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.chunked {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}

	t.Run("disabled", func(t *testing.T) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
		if h := BodyLimitMiddleware(0)(next); h == nil {
			t.Error("expected passthrough handler")
		}
	})
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal log: %v (%s)", err, buf.String())
	}
	return entry
}

func TestLoggingMiddleware(t *testing.T) {
	buf := captureLog(t)

	handler := LoggingMiddleware(RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetStartTime(r.Context()).IsZero() {
			t.Error("start time missing from context")
		}
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	})))

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeEntry(t, buf)
	if entry["msg"] != "http request" || entry["status"] != float64(http.StatusTeapot) || entry["level"] != "WARN" {
		t.Errorf("entry = %v", entry)
	}
	if entry["http_request_id"] != "abc-123" || entry["path"] != "/v1/images/generate" {
		t.Errorf("entry = %v", entry)
	}
	if entry["bytes"] != float64(len("short")) {
		t.Errorf("bytes = %v", entry["bytes"])
	}
	if _, ok := entry["request_id"]; ok {
		t.Errorf("request_id logged without annotation: %v", entry)
	}
}

func TestLoggingMiddleware_Annotate(t *testing.T) {
	buf := captureLog(t)

	handler := LoggingMiddleware(RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), "order-42", "")
		Annotate(r.Context(), "", "storage_failed")
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", nil)
	req.Header.Set(RequestIDHeader, "http-7")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := decodeEntry(t, buf)
	if entry["request_id"] != "order-42" || entry["outcome"] != "storage_failed" {
		t.Errorf("entry = %v", entry)
	}
	if entry["http_request_id"] != "http-7" || entry["level"] != "INFO" {
		t.Errorf("entry = %v", entry)
	}
}

func TestAnnotate_OutsideMiddleware(t *testing.T) {
	// Must not panic without an access record.
	Annotate(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "id", "generated")
}
