package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/server"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/health"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

func TestReadRequests(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantBatch bool
		wantErr   bool
	}{
		{"single object", `{"requestId":"a","platform":"blog","category":"evergreen"}`, 1, false, false},
		{"array", `[{"requestId":"a"},{"requestId":"b"}]`, 2, true, false},
		{"leading whitespace", "\n  [ {\"requestId\":\"a\"} ]", 1, true, false},
		{"empty", "   ", 0, false, true},
		{"null element", `[{"requestId":"a"}, null]`, 0, true, true},
		{"malformed", `{"requestId":`, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqs, batch, err := readRequests(strings.NewReader(tt.input), "-")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(reqs) != tt.wantCount {
				t.Errorf("got %d requests, want %d", len(reqs), tt.wantCount)
			}
			if batch != tt.wantBatch {
				t.Errorf("batch = %v, want %v", batch, tt.wantBatch)
			}
		})
	}
}

func TestParseTimeFlag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseTimeFlag("since", "24h", now)
	if err != nil || !got.Equal(now.Add(-24*time.Hour)) {
		t.Errorf("duration: got %v, %v", got, err)
	}

	got, err = parseTimeFlag("since", "2026-02-01T00:00:00Z", now)
	if err != nil || got.Month() != time.February {
		t.Errorf("rfc3339: got %v, %v", got, err)
	}

	if got, err = parseTimeFlag("since", "", now); got != nil || err != nil {
		t.Errorf("empty: got %v, %v", got, err)
	}

	for _, bad := range []string{"yesterday", "-5m"} {
		if _, err := parseTimeFlag("since", bad, now); err == nil {
			t.Errorf("%q: expected error", bad)
		}
	}
}

func TestListQuery_RejectsUnknownStatus(t *testing.T) {
	resetFlags()
	auditFlags.status = "exploded"
	if _, err := listQuery(time.Now()); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestProviderConfigs(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Engine.ProviderTimeout = 40 * time.Second
	cfg.Providers = map[string]config.ProviderConfig{
		"seedream": {APIKey: "k1", Model: "seedream-4", Watermark: true},
		"gemini":   {APIKey: "k2", Timeout: 10 * time.Second, PremiumModel: "gemini-pro-image"},
	}

	pcs := providerConfigs(cfg)
	if len(pcs) != 2 {
		t.Fatalf("got %d configs", len(pcs))
	}
	if pcs[0].Name != "gemini" || pcs[1].Name != "seedream" {
		t.Errorf("order = %s, %s", pcs[0].Name, pcs[1].Name)
	}
	if pcs[0].Timeout != 10*time.Second || pcs[0].PremiumModel != "gemini-pro-image" {
		t.Errorf("gemini config = %+v", pcs[0])
	}
	if pcs[1].Timeout != 40*time.Second || !pcs[1].Watermark || pcs[1].Model != "seedream-4" {
		t.Errorf("seedream config = %+v", pcs[1])
	}
}

func TestMaskSecrets_LeavesOriginalIntact(t *testing.T) {
	cfg := config.NewDefault()
	cfg.Providers = map[string]config.ProviderConfig{"gemini": {APIKey: "AIzaSyOriginal"}}
	cfg.Storage.S3.AccessKeyID = "AKIAEXAMPLE"
	cfg.Storage.S3.SecretAccessKey = "secret"

	masked := maskSecrets(cfg)
	if masked.Providers["gemini"].APIKey != "AIza***" {
		t.Errorf("masked key = %q", masked.Providers["gemini"].APIKey)
	}
	if masked.Storage.S3.SecretAccessKey != "[REDACTED]" {
		t.Errorf("masked secret = %q", masked.Storage.S3.SecretAccessKey)
	}
	if cfg.Providers["gemini"].APIKey != "AIzaSyOriginal" || cfg.Storage.S3.SecretAccessKey != "secret" {
		t.Error("original configuration was modified")
	}
}

func memoryConfig(provider string) *config.Config {
	cfg := config.NewDefault()
	cfg.Storage.Backend = "memory"
	cfg.Storage.Memory.URLPrefix = "mem://images"
	cfg.Audit.Enabled = false
	cfg.Engine.DefaultProvider = provider
	return cfg
}

func TestLiveStack_Reload(t *testing.T) {
	ctx := context.Background()
	running := memoryConfig("stub")

	st, err := buildStack(ctx, running, stackDeps{})
	if err != nil {
		t.Fatalf("buildStack: %v", err)
	}
	checker := health.New(0)
	live := &liveStack{current: st, checker: checker}
	live.registerProviderChecks(nil, st.registry)
	defer live.Close()

	srv := server.NewServer(&running.Server, st.engine, server.Options{Checker: checker})

	req := &types.Request{RequestID: "r", Platform: types.PlatformBlog, Category: types.CategoryEvergreen}
	if got := srv.Engine().Decide(req).ProviderPlan.ProviderID; got != "stub" {
		t.Fatalf("provider before reload = %q", got)
	}

	next := memoryConfig("seedream")
	live.reload(ctx, running, next, stackDeps{}, srv)

	if srv.Engine() == st.engine {
		t.Fatal("engine was not swapped")
	}
	if got := srv.Engine().Decide(req).ProviderPlan.ProviderID; got != "seedream" {
		t.Errorf("provider after reload = %q", got)
	}
	if len(live.retired) != 1 {
		t.Errorf("retired stacks = %d, want 1", len(live.retired))
	}

	var providerChecks int
	for _, name := range checker.ListChecks() {
		if strings.HasPrefix(name, "provider:") {
			providerChecks++
		}
	}
	if providerChecks != 1 {
		t.Errorf("provider checks = %d, want 1 (stub only)", providerChecks)
	}
}

func TestLiveStack_ReloadFailureKeepsEngine(t *testing.T) {
	ctx := context.Background()
	running := memoryConfig("stub")

	st, err := buildStack(ctx, running, stackDeps{})
	if err != nil {
		t.Fatalf("buildStack: %v", err)
	}
	live := &liveStack{current: st, checker: health.New(0)}
	defer live.Close()
	srv := server.NewServer(&running.Server, st.engine, server.Options{})

	bad := memoryConfig("stub")
	bad.Storage.Backend = "ftp"
	live.reload(ctx, running, bad, stackDeps{}, srv)

	if srv.Engine() != st.engine {
		t.Error("engine swapped despite failed reload")
	}
	if live.current != st {
		t.Error("current stack replaced despite failed reload")
	}
}
