package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/stub"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.timeout).checkTimeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterAndList(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("storage", func(context.Context) error { return nil })
	checker.RegisterOptionalCheck("provider:stub", func(context.Context) error { return nil })

	names := checker.ListChecks()
	if len(names) != 2 || names[0] != "provider:stub" || names[1] != "storage" {
		t.Errorf("ListChecks = %v", names)
	}

	checker.UnregisterCheck("storage")
	if len(checker.ListChecks()) != 1 {
		t.Errorf("after unregister: %v", checker.ListChecks())
	}
}

func TestCheckReadiness(t *testing.T) {
	failing := func(context.Context) error { return errors.New("down") }
	passing := func(context.Context) error { return nil }

	tests := []struct {
		name     string
		critical CheckFunc
		optional CheckFunc
		want     string
	}{
		{"all healthy", passing, passing, StatusReady},
		{"optional failing", passing, failing, StatusDegraded},
		{"critical failing", failing, passing, StatusUnavailable},
		{"both failing", failing, failing, StatusUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			checker.RegisterCheck("storage", tt.critical)
			checker.RegisterOptionalCheck("provider:gemini", tt.optional)

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.want {
				t.Errorf("Status = %q, want %q", status.Status, tt.want)
			}
			if !status.Checks["storage"].Critical || status.Checks["provider:gemini"].Critical {
				t.Errorf("critical flags wrong: %+v", status.Checks)
			}
		})
	}
}

func TestCheckReadiness_NoChecks(t *testing.T) {
	status := New(0).CheckReadiness(context.Background())
	if status.Status != StatusReady {
		t.Errorf("Status = %q", status.Status)
	}
}

func TestCheckReadiness_Timeout(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	status := checker.CheckReadiness(context.Background())
	result := status.Checks["slow"]
	if result.Status != StatusUnhealthy || result.Message != ErrCheckTimeout.Error() {
		t.Errorf("result = %+v", result)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		register func(*Checker)
		wantCode int
		wantBody string
	}{
		{
			name:     "ready",
			register: func(c *Checker) { c.RegisterCheck("storage", func(context.Context) error { return nil }) },
			wantCode: http.StatusOK,
			wantBody: StatusReady,
		},
		{
			name: "degraded stays 200",
			register: func(c *Checker) {
				c.RegisterOptionalCheck("provider:gemini", func(context.Context) error { return errors.New("down") })
			},
			wantCode: http.StatusOK,
			wantBody: StatusDegraded,
		},
		{
			name: "unavailable is 503",
			register: func(c *Checker) {
				c.RegisterCheck("audit", func(context.Context) error { return errors.New("locked") })
			},
			wantCode: http.StatusServiceUnavailable,
			wantBody: StatusUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			tt.register(checker)

			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantBody {
				t.Errorf("status = %q, want %q", status.Status, tt.wantBody)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := New(time.Second)

	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodHead, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Errorf("HEAD code = %d body = %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	checker.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST code = %d", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, New(time.Second), "1.2.3", "abc", "today")

	for _, path := range []string{"/health", "/ready", "/version"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s code = %d", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("info = %+v", info)
	}
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestPingCheck(t *testing.T) {
	if err := PingCheck(fakePinger{})(context.Background()); err != nil {
		t.Errorf("healthy pinger: %v", err)
	}
	if err := PingCheck(fakePinger{err: errors.New("closed")})(context.Background()); err == nil {
		t.Error("expected error from failing pinger")
	}
}

func TestProviderCheck(t *testing.T) {
	p := stub.New("", stub.Options{})
	if err := ProviderCheck(p)(context.Background()); err != nil {
		t.Errorf("stub provider check: %v", err)
	}
}
