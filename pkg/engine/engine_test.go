package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/recorder"
	auditstorage "github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/decision"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/prompt"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providerfactory"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/stub"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/sizing"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage/memory"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/logging"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/metrics"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// captureSink records audit calls in memory.
type captureSink struct {
	mu     sync.Mutex
	jobs   []audit.JobRecord
	events []audit.EventRecord
}

func (s *captureSink) RecordJob(ctx context.Context, job audit.JobRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

func (s *captureSink) RecordEvent(ctx context.Context, event audit.EventRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *captureSink) statuses() []audit.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Status, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Status)
	}
	return out
}

func (s *captureSink) lastJob(t *testing.T) audit.JobRecord {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.jobs) == 0 {
		t.Fatal("no job recorded")
	}
	return s.jobs[len(s.jobs)-1]
}

// sourceFunc adapts a function to ProviderSource.
type sourceFunc func(id string) providers.Provider

func (f sourceFunc) Get(id string) providers.Provider { return f(id) }

func only(p providers.Provider) ProviderSource {
	return sourceFunc(func(string) providers.Provider { return p })
}

// echoProvider fails with a message that repeats the prompt.
type echoProvider struct {
	*stub.Provider
}

func (p echoProvider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	return &providers.GenerateOutput{
		ErrorCode:        providers.CodeProviderBadResponse,
		ErrorMessageSafe: "upstream said: " + in.Prompt,
	}
}

// panicProvider panics inside Generate.
type panicProvider struct {
	*stub.Provider
}

func (p panicProvider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	panic("adapter exploded")
}

// panicSink panics on every job.
type panicSink struct{ captureSink }

func (s *panicSink) RecordJob(ctx context.Context, job audit.JobRecord) {
	panic("sink exploded")
}

func validRequest(id string) *types.Request {
	return &types.Request{
		RequestID:   id,
		ConsumerApp: types.ConsumerAppSocialAutoPoster,
		Platform:    types.PlatformInstagram,
		Category:    types.CategoryEducational,
	}
}

func newEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Providers == nil {
		cfg.Providers = providerfactory.NewRegistry()
	}
	if cfg.Storage == nil {
		cfg.Storage = memory.New("mem://images")
	}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func assertExclusive(t *testing.T, res *GenerationResult) {
	t.Helper()
	if res == nil {
		t.Fatal("Generate returned nil")
	}
	if res.OK {
		if res.Image == nil || res.Fallback != nil || res.Error != nil {
			t.Errorf("ok result must carry only an image: %+v", res)
		}
		return
	}
	if res.Image != nil {
		t.Error("failed result carries an image")
	}
	if res.Fallback == nil || !res.Fallback.Used {
		t.Error("failed result must mark fallback used")
	}
	if res.Error == nil || res.Error.Code == "" {
		t.Error("failed result must carry an error code")
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Config{Storage: memory.New("")}); err == nil {
		t.Error("expected error without providers")
	}
	if _, err := New(Config{Providers: providerfactory.NewRegistry()}); err == nil {
		t.Error("expected error without storage")
	}
}

func TestGenerate_Success(t *testing.T) {
	store := memory.New("mem://images")
	sink := &captureSink{}
	e := newEngine(t, Config{Storage: store, Audit: sink})

	res := e.Generate(context.Background(), validRequest("req-1"))
	assertExclusive(t, res)
	if !res.OK {
		t.Fatalf("expected success, got %+v", res.Error)
	}

	want := sizing.Resolve(res.Decision.Platform, res.Decision.Aspect)
	if res.Image.Width != want.Width || res.Image.Height != want.Height {
		t.Errorf("image size = %dx%d, want %s", res.Image.Width, res.Image.Height, want)
	}
	if res.Image.ContentType != "image/png" {
		t.Errorf("content type = %q", res.Image.ContentType)
	}
	if res.Image.AltText != AltText(&res.Decision) {
		t.Errorf("alt text = %q", res.Image.AltText)
	}
	key := storage.Key("req-1", "instagram", "educational", "image/png")
	if res.Image.URL != "mem://images/"+key {
		t.Errorf("url = %q", res.Image.URL)
	}
	if _, ok := store.Get(key); !ok {
		t.Error("image not written to storage")
	}

	for _, stage := range []string{StageDecide, StageAssemble, StageSize, StageProvider, StageStorage, StageAltText, StageTotal} {
		if _, ok := res.TimingsMs[stage]; !ok {
			t.Errorf("timings missing %q", stage)
		}
	}
	var sum int64
	for stage, ms := range res.TimingsMs {
		if stage != StageTotal {
			sum += ms
		}
	}
	if res.TimingsMs[StageTotal] != sum {
		t.Errorf("total = %d, want sum %d", res.TimingsMs[StageTotal], sum)
	}

	got := sink.statuses()
	if len(got) != 2 || got[0] != audit.StatusQueued || got[1] != audit.StatusGenerated {
		t.Errorf("job statuses = %v, want [queued generated]", got)
	}
	job := sink.lastJob(t)
	if job.ImageURL != res.Image.URL || job.StorageBackend != storage.BackendMemory || job.ProviderID != stub.Name {
		t.Errorf("final job = %+v", job)
	}
	if job.Width != want.Width || job.Height != want.Height {
		t.Errorf("job size = %dx%d", job.Width, job.Height)
	}
}

func TestGenerate_SafetyFallback(t *testing.T) {
	provider := stub.New(stub.Name, stub.Options{})
	store := memory.New("")
	sink := &captureSink{}
	e := newEngine(t, Config{Providers: only(provider), Storage: store, Audit: sink})

	req := validRequest("req-blocked")
	req.Safety = &types.SafetyOverrides{ForceFallback: true}

	res := e.Generate(context.Background(), req)
	assertExclusive(t, res)
	if res.OK {
		t.Fatal("expected fallback")
	}
	if res.Error.Code != CodeSafetyBlocked || res.Fallback.Reason != ReasonSafetyBlocked {
		t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
	}
	if res.Decision.Mode != types.ModeFallback {
		t.Errorf("decision mode = %q", res.Decision.Mode)
	}
	if provider.Calls() != 0 {
		t.Errorf("provider called %d times", provider.Calls())
	}
	if store.Writes() != 0 {
		t.Errorf("storage written %d times", store.Writes())
	}
	if got := sink.statuses(); len(got) != 1 || got[0] != audit.StatusSkipped {
		t.Errorf("job statuses = %v, want [skipped]", got)
	}
	for _, stage := range []string{StageProvider, StageStorage} {
		if _, ok := res.TimingsMs[stage]; ok {
			t.Errorf("fallback result timed stage %q", stage)
		}
	}
}

func TestGenerate_NilRequest(t *testing.T) {
	e := newEngine(t, Config{})
	res := e.Generate(context.Background(), nil)
	assertExclusive(t, res)
	if res.OK || res.Error.Code != CodeSafetyBlocked {
		t.Errorf("nil request result = %+v", res.Error)
	}
}

func TestGenerate_ProviderFailures(t *testing.T) {
	codes := []string{
		CodeProviderError,
		CodeProviderHTTPError,
		CodeProviderBadResponse,
		CodeProviderTimeout,
		CodeNoImageReturned,
	}
	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			store := memory.New("")
			sink := &captureSink{}
			e := newEngine(t, Config{
				Providers: only(stub.New("failing", stub.Options{FailCode: code})),
				Storage:   store,
				Audit:     sink,
			})

			res := e.Generate(context.Background(), validRequest("req-"+code))
			assertExclusive(t, res)
			if res.OK {
				t.Fatal("expected failure")
			}
			if res.Error.Code != code || res.Fallback.Reason != ReasonProviderFailed {
				t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
			}
			if store.Writes() != 0 {
				t.Error("storage written after provider failure")
			}
			job := sink.lastJob(t)
			if job.Status != audit.StatusFallback || job.ErrorCode != code || job.ProviderID != "failing" {
				t.Errorf("final job = %+v", job)
			}
		})
	}
}

func TestGenerate_ProviderTimeout(t *testing.T) {
	e := newEngine(t, Config{
		Providers:       only(stub.New(stub.Name, stub.Options{Delay: 2 * time.Second})),
		ProviderTimeout: 20 * time.Millisecond,
	})

	start := time.Now()
	res := e.Generate(context.Background(), validRequest("req-slow"))
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, took %v", elapsed)
	}
	assertExclusive(t, res)
	if res.OK || res.Error.Code != CodeProviderTimeout {
		t.Errorf("error = %+v", res.Error)
	}
}

func TestGenerate_CallerCancellation(t *testing.T) {
	e := newEngine(t, Config{
		Providers: only(stub.New(stub.Name, stub.Options{Delay: 5 * time.Second})),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := e.Generate(ctx, validRequest("req-cancel"))
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancellation not honoured, took %v", elapsed)
	}
	assertExclusive(t, res)
	if res.OK || res.Error.Code != CodeProviderError || res.Fallback.Reason != ReasonProviderFailed {
		t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
	}
}

func TestGenerate_StorageFailure(t *testing.T) {
	store := memory.New("")
	store.FailWith(storage.CodeStorageAuthError)
	sink := &captureSink{}
	e := newEngine(t, Config{Storage: store, Audit: sink})

	res := e.Generate(context.Background(), validRequest("req-store"))
	assertExclusive(t, res)
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Error.Code != CodeStorageAuthError || res.Fallback.Reason != ReasonStorageFailed {
		t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
	}
	if _, ok := res.TimingsMs[StageAltText]; ok {
		t.Error("alt text built after storage failure")
	}
	if job := sink.lastJob(t); job.Status != audit.StatusFallback || job.StorageBackend != storage.BackendMemory {
		t.Errorf("final job = %+v", job)
	}
}

func TestGenerate_ProviderPanic(t *testing.T) {
	sink := &captureSink{}
	store := memory.New("")
	e := newEngine(t, Config{
		Providers: only(panicProvider{stub.New("boom", stub.Options{})}),
		Storage:   store,
		Audit:     sink,
	})

	res := e.Generate(context.Background(), validRequest("req-panic"))
	assertExclusive(t, res)
	if res.Error.Code != CodeProviderError || res.Fallback.Reason != ReasonProviderFailed {
		t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
	}
	if strings.Contains(res.Error.Message, "exploded") {
		t.Errorf("panic value leaked into message: %q", res.Error.Message)
	}
	if store.Writes() != 0 {
		t.Error("storage written after provider panic")
	}
	job := sink.lastJob(t)
	if job.Status != audit.StatusFallback || job.ErrorCode != CodeProviderError || job.ProviderID != "boom" {
		t.Errorf("final job = %+v", job)
	}
	if res.RequestID != "req-panic" {
		t.Errorf("request id = %q", res.RequestID)
	}
}

// flakyProvider is an HTTP-backed provider whose adapter panics.
type flakyProvider struct {
	*providers.HTTPProvider
}

func (p flakyProvider) Generate(ctx context.Context, in *providers.GenerateInput) *providers.GenerateOutput {
	panic("nil response body")
}

func TestGenerate_ProviderPanicCountsAgainstHealth(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(nil, reg)

	base := providers.NewHTTPProvider(providers.ProviderConfig{Name: "flaky", Type: "gemini"})
	defer base.Close()
	base.SetHealthObserver(collector.UpdateProviderHealth)

	e := newEngine(t, Config{Providers: only(flakyProvider{base}), Metrics: collector})
	for i := 0; i < 3; i++ {
		res := e.Generate(context.Background(), validRequest(fmt.Sprintf("req-flaky-%d", i)))
		if res.OK || res.Error.Code != CodeProviderError {
			t.Fatalf("call %d: error = %+v", i, res.Error)
		}
	}

	if base.IsHealthy() {
		t.Error("provider still healthy after three panics")
	}
	if got := base.GetHealth().ConsecutiveFailures; got != 3 {
		t.Errorf("consecutive failures = %d, want 3", got)
	}

	expected := `
# HELP imagery_provider_calls_total Total number of provider calls by result code
# TYPE imagery_provider_calls_total counter
imagery_provider_calls_total{code="PROVIDER_ERROR",provider="flaky"} 3
# HELP imagery_provider_health Provider health status (1=healthy, 0=unhealthy)
# TYPE imagery_provider_health gauge
imagery_provider_health{provider="flaky"} 0
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"imagery_provider_calls_total", "imagery_provider_health"); err != nil {
		t.Error(err)
	}
}

// panicStorage panics on every write.
type panicStorage struct{}

func (panicStorage) Name() string { return "exploding" }

func (panicStorage) Write(ctx context.Context, in *storage.WriteInput) *storage.WriteOutput {
	panic("disk exploded")
}

func (panicStorage) Close() error { return nil }

func TestGenerate_StoragePanic(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink := &captureSink{}
	e := newEngine(t, Config{
		Storage: panicStorage{},
		Audit:   sink,
		Metrics: metrics.NewCollector(nil, reg),
	})

	res := e.Generate(context.Background(), validRequest("req-store-panic"))
	assertExclusive(t, res)
	if res.Error.Code != CodeStorageError || res.Fallback.Reason != ReasonStorageFailed {
		t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
	}
	if strings.Contains(res.Error.Message, "exploded") {
		t.Errorf("panic value leaked into message: %q", res.Error.Message)
	}
	if _, ok := res.TimingsMs[StageAltText]; ok {
		t.Error("alt text built after storage panic")
	}
	job := sink.lastJob(t)
	if job.Status != audit.StatusFallback || job.ErrorCode != CodeStorageError || job.StorageBackend != "exploding" {
		t.Errorf("final job = %+v", job)
	}

	expected := `
# HELP imagery_storage_writes_total Total number of storage writes by result code
# TYPE imagery_storage_writes_total counter
imagery_storage_writes_total{backend="exploding",code="STORAGE_ERROR"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "imagery_storage_writes_total"); err != nil {
		t.Error(err)
	}
}

func TestGenerate_RecoversFromPanic(t *testing.T) {
	sink := &captureSink{}
	e := newEngine(t, Config{
		Providers: sourceFunc(func(string) providers.Provider { panic("registry exploded") }),
		Audit:     sink,
	})

	res := e.Generate(context.Background(), validRequest("req-unexpected"))
	assertExclusive(t, res)
	if res.Error.Code != CodeUnexpectedError || res.Fallback.Reason != ReasonUnexpectedError {
		t.Errorf("error = %+v fallback = %+v", res.Error, res.Fallback)
	}
	if strings.Contains(res.Error.Message, "exploded") {
		t.Errorf("panic value leaked into message: %q", res.Error.Message)
	}
	if job := sink.lastJob(t); job.Status != audit.StatusFailed {
		t.Errorf("final job status = %q", job.Status)
	}
	if res.RequestID != "req-unexpected" {
		t.Errorf("request id = %q", res.RequestID)
	}
}

func TestGenerate_PanickingSink(t *testing.T) {
	store := memory.New("mem://images")
	e := newEngine(t, Config{Storage: store, Audit: &panicSink{}})

	res := e.Generate(context.Background(), validRequest("req-sink"))
	assertExclusive(t, res)
	if !res.OK {
		t.Fatalf("audit failure changed the result: %+v", res.Error)
	}
	if res.Image == nil || store.Writes() != 1 {
		t.Errorf("image = %+v writes = %d", res.Image, store.Writes())
	}
}

func TestGenerate_ResubmittedRequestID(t *testing.T) {
	store := auditstorage.NewMemoryStore()
	rec := recorder.New(store, &recorder.Config{BufferSize: 64})
	defer rec.Close()
	e := newEngine(t, Config{Audit: rec})

	ctx := context.Background()
	first := e.Generate(ctx, validRequest("order-42"))
	if !first.OK {
		t.Fatalf("first: %+v", first.Error)
	}
	if err := rec.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	before, err := store.GetJob(ctx, "order-42")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}

	time.Sleep(5 * time.Millisecond)
	second := e.Generate(ctx, validRequest("order-42"))
	if !second.OK {
		t.Fatalf("second: %+v", second.Error)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if second.Image.URL != first.Image.URL {
		t.Errorf("url changed on resubmit: %q then %q", first.Image.URL, second.Image.URL)
	}

	jobs, err := store.QueryJobs(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("QueryJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("jobs = %d, want one row per request id", len(jobs))
	}
	after, err := store.GetJob(ctx, "order-42")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created at moved from %v to %v", before.CreatedAt, after.CreatedAt)
	}
	if !after.UpdatedAt.After(before.UpdatedAt) {
		t.Errorf("updated at not advanced: %v then %v", before.UpdatedAt, after.UpdatedAt)
	}
	if after.Status != audit.StatusGenerated || after.ImageURL != first.Image.URL {
		t.Errorf("job = %+v", after)
	}
}

func TestGenerate_NilProviderUsesStub(t *testing.T) {
	e := newEngine(t, Config{Providers: sourceFunc(func(string) providers.Provider { return nil })})

	res := e.Generate(context.Background(), validRequest("req-nil-provider"))
	if !res.OK {
		t.Fatalf("expected stub success, got %+v", res.Error)
	}
}

func TestGenerate_UnknownProviderRoutesToStub(t *testing.T) {
	sink := &captureSink{}
	e := newEngine(t, Config{
		Audit:    sink,
		Decision: decision.Options{ProviderID: "not-configured"},
	})

	res := e.Generate(context.Background(), validRequest("req-unknown"))
	if !res.OK {
		t.Fatalf("expected success, got %+v", res.Error)
	}
	if res.Decision.ProviderPlan.ProviderID != "not-configured" {
		t.Errorf("decision provider = %q", res.Decision.ProviderPlan.ProviderID)
	}
	if job := sink.lastJob(t); job.ProviderID != stub.Name {
		t.Errorf("job provider = %q, want %q", job.ProviderID, stub.Name)
	}
}

func TestGenerate_NoPromptLeak(t *testing.T) {
	const marker = "zqxvmarkerbakery"

	buf := &bytes.Buffer{}
	logger, err := logging.New(logging.Config{Level: "debug", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}

	sink := &captureSink{}
	e := newEngine(t, Config{
		Providers: only(echoProvider{stub.New("echo", stub.Options{})}),
		Audit:     sink,
		Logger:    logger.Slog(),
	})

	req := validRequest("req-leak")
	req.BrandKit = &types.BrandKit{Industry: marker, Locale: marker + " harbour"}

	res := e.Generate(context.Background(), req)
	assertExclusive(t, res)
	if res.Error.Code != CodeProviderBadResponse {
		t.Fatalf("error = %+v", res.Error)
	}

	assembled := prompt.Assemble(res.Decision.PromptPlan)
	if !strings.Contains(assembled, marker) {
		t.Fatalf("marker not in assembled prompt; test is not exercising the leak path")
	}

	if strings.Contains(res.Error.Message, marker) {
		t.Errorf("error message leaks prompt: %q", res.Error.Message)
	}
	out, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(out), assembled) {
		t.Error("serialized result contains the assembled prompt")
	}
	for _, frag := range prompt.Fragments(assembled) {
		if strings.Contains(res.Error.Message, frag) {
			t.Errorf("error message contains prompt fragment %q", frag)
		}
	}
	if strings.Contains(buf.String(), marker) {
		t.Errorf("logs leak prompt:\n%s", buf.String())
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	for _, ev := range sink.events {
		if strings.Contains(ev.SafeMessage, marker) || strings.Contains(fmt.Sprint(ev.SafeData), marker) {
			t.Errorf("audit event leaks prompt: %+v", ev)
		}
	}
	for _, job := range sink.jobs {
		if strings.Contains(job.ErrorMessage, marker) {
			t.Errorf("audit job leaks prompt: %q", job.ErrorMessage)
		}
		raw, _ := json.Marshal(job.Decision)
		if strings.Contains(string(raw), marker) {
			t.Errorf("redacted decision leaks plan variables: %s", raw)
		}
	}
}

func TestGenerate_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(nil, reg)
	e := newEngine(t, Config{Metrics: collector})

	e.Generate(context.Background(), validRequest("req-m1"))
	blocked := validRequest("req-m2")
	blocked.Safety = &types.SafetyOverrides{ForceFallback: true}
	e.Generate(context.Background(), blocked)

	n, err := testutil.GatherAndCount(reg, "imagery_generations_total")
	if err != nil {
		t.Fatalf("GatherAndCount: %v", err)
	}
	if n != 2 {
		t.Errorf("generation series = %d, want 2 (generated, skipped)", n)
	}
	if n, _ := testutil.GatherAndCount(reg, "imagery_safety_blocks_total"); n != 1 {
		t.Errorf("safety block series = %d, want 1", n)
	}
	if n, _ := testutil.GatherAndCount(reg, "imagery_provider_calls_total"); n != 1 {
		t.Errorf("provider call series = %d, want 1", n)
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	store := memory.New("")
	e := newEngine(t, Config{Storage: store})

	var wg sync.WaitGroup
	results := make([]*GenerationResult, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Generate(context.Background(), validRequest(fmt.Sprintf("req-%02d", i)))
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		if !res.OK {
			t.Errorf("request %d failed: %+v", i, res.Error)
		}
	}
	if store.Len() != len(results) {
		t.Errorf("stored %d images, want %d", store.Len(), len(results))
	}
}

func TestDecide_Deterministic(t *testing.T) {
	e := newEngine(t, Config{Decision: decision.Options{ProviderID: "gemini"}})
	req := validRequest("req-d")
	req.BrandKit = &types.BrandKit{Colors: []string{"#112233"}, StyleTone: "warm"}

	a, _ := json.Marshal(e.Decide(req))
	b, _ := json.Marshal(e.Decide(req))
	if !bytes.Equal(a, b) {
		t.Errorf("decisions differ:\n%s\n%s", a, b)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.EngineConfig{
		DefaultProvider:   "imagen",
		ModelTier:         "standard",
		PremiumCategories: []string{"promotion", "evergreen"},
	})
	if opts.ProviderID != "imagen" || opts.ModelTier != types.ModelTierStandard {
		t.Errorf("opts = %+v", opts)
	}
	if len(opts.PremiumCategories) != 2 || opts.PremiumCategories[1] != types.CategoryEvergreen {
		t.Errorf("premium categories = %v", opts.PremiumCategories)
	}
}
