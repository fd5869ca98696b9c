package providers

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockServer is a mock HTTP server for testing provider adapters.
// It simulates image API responses including errors, slow responses and
// malformed bodies, and records what it received.
type MockServer struct {
	server       *httptest.Server
	responses    map[string]MockResponse
	requestCount int
	lastBody     []byte
	lastHeaders  http.Header
	mu           sync.Mutex
}

// MockResponse defines a mock response configuration.
type MockResponse struct {
	StatusCode int
	Body       interface{}
	Delay      time.Duration
	Headers    map[string]string
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]MockResponse),
	}
	ms.server = httptest.NewServer(http.HandlerFunc(ms.handler))
	return ms
}

// URL returns the mock server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close closes the mock server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse sets a mock response for a specific path.
func (ms *MockServer) SetResponse(path string, response MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.responses[path] = response
}

// GetRequestCount returns the number of requests received.
func (ms *MockServer) GetRequestCount() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.requestCount
}

// LastRequestBody returns the body of the most recent request.
func (ms *MockServer) LastRequestBody() []byte {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	return ms.lastBody
}

// LastRequestHeader returns a header of the most recent request.
func (ms *MockServer) LastRequestHeader(key string) string {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.lastHeaders == nil {
		return ""
	}
	return ms.lastHeaders.Get(key)
}

func (ms *MockServer) handler(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	ms.mu.Lock()
	ms.requestCount++
	ms.lastBody = body
	ms.lastHeaders = r.Header.Clone()
	response, ok := ms.responses[r.URL.Path]
	ms.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	if response.Delay > 0 {
		select {
		case <-time.After(response.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(response.StatusCode)

	if response.Body != nil {
		switch v := response.Body.(type) {
		case string:
			_, _ = w.Write([]byte(v))
		case []byte:
			_, _ = w.Write(v)
		default:
			_ = json.NewEncoder(w).Encode(response.Body)
		}
	}
}

// GeminiPath returns the generateContent path for a model.
func GeminiPath(model string) string {
	return fmt.Sprintf("/v1beta/models/%s:generateContent", model)
}

// MockGeminiImageResponse creates a generateContent response with one inline image.
func MockGeminiImageResponse(data []byte, mimeType string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": "Here is your image."},
						{
							"inlineData": map[string]interface{}{
								"mimeType": mimeType,
								"data":     base64.StdEncoding.EncodeToString(data),
							},
						},
					},
				},
				"finishReason": "STOP",
			},
		},
	}
}

// MockGeminiNoImageResponse creates a response whose candidate carries text only.
func MockGeminiNoImageResponse(finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": "I can't help with that."}},
				},
				"finishReason": finishReason,
			},
		},
	}
}

// MockGeminiBlockedResponse creates a response blocked at prompt level.
func MockGeminiBlockedResponse(blockReason string) map[string]interface{} {
	return map[string]interface{}{
		"promptFeedback": map[string]interface{}{"blockReason": blockReason},
	}
}

// MockErrorResponse creates a mock error response in the Google API shape.
func MockErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body: map[string]interface{}{
			"error": map[string]interface{}{
				"code":    statusCode,
				"message": message,
				"status":  http.StatusText(statusCode),
			},
		},
	}
}

// MockAuthError creates a 401 authentication error response.
func MockAuthError() MockResponse {
	return MockErrorResponse(http.StatusUnauthorized, "API key not valid")
}

// MockRateLimitError creates a 429 rate limit error response.
func MockRateLimitError(retryAfter int) MockResponse {
	response := MockErrorResponse(http.StatusTooManyRequests, "Resource has been exhausted")
	response.Headers = map[string]string{
		"Retry-After": fmt.Sprintf("%d", retryAfter),
	}
	return response
}

// MockServerError creates a 500 internal server error response.
func MockServerError() MockResponse {
	return MockErrorResponse(http.StatusInternalServerError, "Internal error encountered")
}

// MockSlowResponse creates a response delayed past typical test timeouts.
func MockSlowResponse(delay time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       MockGeminiImageResponse([]byte("late"), "image/png"),
		Delay:      delay,
	}
}

// MockMalformedResponse creates a 200 response with an undecodable body.
func MockMalformedResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusOK, Body: "{\"candidates\": [", Headers: map[string]string{"Content-Type": "application/json"}}
}
