package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/decision"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/prompt"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers/stub"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/sizing"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/logging"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/metrics"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/telemetry/tracing"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

// DefaultStorageTimeout bounds a storage write when none is configured.
const DefaultStorageTimeout = 15 * time.Second

// ProviderSource selects the provider for a decision's provider id.
// *providerfactory.Registry implements it.
type ProviderSource interface {
	Get(id string) providers.Provider
}

// AuditSink receives job and event records. Implementations must not block
// the caller; *recorder.Recorder is the production sink.
type AuditSink interface {
	RecordJob(ctx context.Context, job audit.JobRecord)
	RecordEvent(ctx context.Context, event audit.EventRecord)
}

// Config wires an Engine. Providers and Storage are required.
type Config struct {
	// Providers resolves provider ids. Ids it cannot serve should route to
	// the stub provider.
	Providers ProviderSource

	// Storage persists generated images.
	Storage storage.Backend

	// Audit receives job and event records (optional)
	Audit AuditSink

	// Metrics records stage timings and outcomes (optional)
	Metrics *metrics.Collector

	// Tracer creates one span per stage (optional)
	Tracer *tracing.Tracer

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// Decision carries the environment-dependent inputs of resolution
	Decision decision.Options

	// ProviderTimeout bounds one provider call (providers.DefaultTimeout when zero)
	ProviderTimeout time.Duration

	// StorageTimeout bounds one storage write (DefaultStorageTimeout when zero)
	StorageTimeout time.Duration
}

// Engine runs generations. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	providers       ProviderSource
	storage         storage.Backend
	audit           AuditSink
	metrics         *metrics.Collector
	tracer          *tracing.Tracer
	logger          *slog.Logger
	opts            decision.Options
	providerTimeout time.Duration
	storageTimeout  time.Duration
	fallback        providers.Provider
}

// New creates an engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Providers == nil {
		return nil, errors.New("engine: provider source is required")
	}
	if cfg.Storage == nil {
		return nil, errors.New("engine: storage backend is required")
	}

	e := &Engine{
		providers:       cfg.Providers,
		storage:         cfg.Storage,
		audit:           cfg.Audit,
		metrics:         cfg.Metrics,
		tracer:          cfg.Tracer,
		logger:          cfg.Logger,
		opts:            cfg.Decision,
		providerTimeout: cfg.ProviderTimeout,
		storageTimeout:  cfg.StorageTimeout,
		fallback:        stub.New(stub.Name, stub.Options{}),
	}
	if e.tracer == nil {
		e.tracer = tracing.Noop()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.logger = e.logger.With("component", "engine")
	if e.providerTimeout <= 0 {
		e.providerTimeout = providers.DefaultTimeout
	}
	if e.storageTimeout <= 0 {
		e.storageTimeout = DefaultStorageTimeout
	}
	return e, nil
}

// OptionsFromConfig converts the engine section of the configuration into
// resolution options.
func OptionsFromConfig(cfg config.EngineConfig) decision.Options {
	opts := decision.Options{
		ProviderID: cfg.DefaultProvider,
		ModelTier:  types.ModelTier(cfg.ModelTier),
	}
	for _, c := range cfg.PremiumCategories {
		opts.PremiumCategories = append(opts.PremiumCategories, types.Category(c))
	}
	return opts
}

// Decide resolves a request without generating anything.
func (e *Engine) Decide(req *types.Request) types.Decision {
	return decision.Resolve(req, e.opts)
}

// run holds the state of one Generate call.
type run struct {
	decision types.Decision
	prompt   string
	size     sizing.Size
	stage    string
	timings  timings
	logger   *slog.Logger
	span     trace.Span
	provider string
}

// Generate produces an image for req or a fallback result. It never panics
// and never returns nil.
func (e *Engine) Generate(ctx context.Context, req *types.Request) (res *GenerationResult) {
	r := &run{timings: timings{}, logger: e.logger}

	ctx, span := e.tracer.Start(ctx, "imagery.generate")
	defer span.End()
	r.span = span

	defer func() {
		if p := recover(); p != nil {
			msg := prompt.Scrub(fmt.Sprint(p), r.prompt)
			r.logger.ErrorContext(ctx, "generation panicked", "stage", r.stage, "panic", msg)
			res = failure(r.decision, ReasonUnexpectedError, CodeUnexpectedError,
				"unexpected error during "+r.stage+" stage", r.timings)
			e.finishAfterPanic(ctx, r, res)
		}
	}()

	// DECIDE
	r.stage = StageDecide
	start := time.Now()
	r.decision = e.decideStage(ctx, req)
	e.track(r, StageDecide, start)
	d := &r.decision

	r.logger = e.logger.With("request_id", d.RequestID)
	span.SetAttributes(tracing.RequestAttributes(d.RequestID, string(d.ConsumerApp), string(d.Platform), string(d.Category))...)
	tracing.SetDecisionAttributes(span, string(d.Mode), d.ProviderPlan.ProviderID, string(d.ProviderPlan.ModelTier))

	if !d.IsLive() {
		e.metrics.RecordSafetyBlock(d.Safety.Reasons)
		e.event(ctx, d.RequestID, audit.EventDecision, false, "safety gate blocked generation",
			map[string]string{"mode": string(d.Mode), "reasons": joinReasons(d.Safety.Reasons)})
		res = failure(*d, ReasonSafetyBlocked, CodeSafetyBlocked,
			"generation blocked by safety rules: "+joinReasons(d.Safety.Reasons), r.timings)
		e.finish(ctx, r, res, audit.StatusSkipped, OutcomeSkipped)
		return res
	}
	e.event(ctx, d.RequestID, audit.EventDecision, true, "decision resolved",
		map[string]string{"mode": string(d.Mode), "template_id": d.PromptPlan.TemplateID})

	// ASSEMBLE_PROMPT
	r.stage = StageAssemble
	start = time.Now()
	r.prompt = prompt.Assemble(d.PromptPlan)
	negative := prompt.NegativePrompt(d.PromptPlan)
	r.logger = logging.ForPrompt(r.logger, r.prompt)
	e.track(r, StageAssemble, start)

	// RESOLVE_SIZE
	r.stage = StageSize
	start = time.Now()
	r.size = sizing.Resolve(d.Platform, d.Aspect)
	tracing.SetSizeAttributes(span, r.size.Width, r.size.Height)
	e.track(r, StageSize, start)

	queued := audit.JobFromDecision(d, audit.StatusQueued)
	queued.Width, queued.Height = r.size.Width, r.size.Height
	e.job(ctx, queued)

	// CALL_PROVIDER
	r.stage = StageProvider
	out := e.callProvider(ctx, r, &providers.GenerateInput{
		Prompt:         r.prompt,
		NegativePrompt: negative,
		Width:          r.size.Width,
		Height:         r.size.Height,
		Aspect:         string(d.Aspect),
		ModelTier:      string(d.ProviderPlan.ModelTier),
	})
	if !out.OK {
		res = failure(*d, ReasonProviderFailed, out.ErrorCode, prompt.Scrub(out.ErrorMessageSafe, r.prompt), r.timings)
		e.finish(ctx, r, res, audit.StatusFallback, OutcomeFallback)
		return res
	}

	// WRITE_STORAGE
	r.stage = StageStorage
	written := e.writeStorage(ctx, r, out)
	if !written.OK {
		res = failure(*d, ReasonStorageFailed, written.ErrorCode, prompt.Scrub(written.ErrorMessageSafe, r.prompt), r.timings)
		e.finish(ctx, r, res, audit.StatusFallback, OutcomeFallback)
		return res
	}

	// BUILD_ALT_TEXT
	r.stage = StageAltText
	start = time.Now()
	alt := AltText(d)
	e.track(r, StageAltText, start)

	res = success(*d, &Image{
		URL:         written.URL,
		Width:       r.size.Width,
		Height:      r.size.Height,
		ContentType: out.MIMEType,
		AltText:     alt,
	}, r.timings)
	e.finish(ctx, r, res, audit.StatusGenerated, OutcomeGenerated)
	return res
}

func (e *Engine) decideStage(ctx context.Context, req *types.Request) types.Decision {
	_, span := e.tracer.StartStage(ctx, StageDecide)
	defer span.End()
	return decision.Resolve(req, e.opts)
}

func (e *Engine) callProvider(ctx context.Context, r *run, in *providers.GenerateInput) *providers.GenerateOutput {
	id := r.decision.ProviderPlan.ProviderID
	ctx, span := e.tracer.StartStage(ctx, StageProvider)
	defer span.End()

	p := e.providers.Get(id)
	if p == nil {
		r.logger.Warn("provider source returned nothing, using stub", "provider", id)
		p = e.fallback
	}
	r.provider = p.GetName()

	callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
	defer cancel()

	start := time.Now()
	out := e.generate(callCtx, r, p, in)
	e.track(r, StageProvider, start)

	switch {
	case out == nil:
		out = &providers.GenerateOutput{ErrorCode: CodeProviderError, ErrorMessageSafe: p.GetName() + ": provider returned no result"}
	case out.OK && len(out.Data) == 0:
		out = &providers.GenerateOutput{ErrorCode: CodeNoImageReturned, ErrorMessageSafe: p.GetName() + ": provider returned an empty image"}
	}

	e.metrics.RecordProviderCall(p.GetName(), out.ErrorCode)
	tracing.SetStatus(span, out.ErrorCode)

	if out.OK {
		r.logger.Debug("provider returned image", "provider", p.GetName(), "model", out.Model, "bytes", len(out.Data))
		e.event(ctx, r.decision.RequestID, audit.EventProvider, true, "image generated",
			map[string]string{"provider": p.GetName(), "model": out.Model, "mime_type": out.MIMEType})
		return out
	}

	msg := prompt.Scrub(out.ErrorMessageSafe, r.prompt)
	r.logger.Warn("provider call failed", "provider", p.GetName(), "code", out.ErrorCode, "message", msg)
	e.event(ctx, r.decision.RequestID, audit.EventProvider, false, msg,
		map[string]string{"provider": p.GetName(), "code": out.ErrorCode})
	return out
}

func (e *Engine) writeStorage(ctx context.Context, r *run, out *providers.GenerateOutput) *storage.WriteOutput {
	d := &r.decision
	ctx, span := e.tracer.StartStage(ctx, StageStorage)
	defer span.End()

	writeCtx, cancel := context.WithTimeout(ctx, e.storageTimeout)
	defer cancel()

	key := storage.Key(d.RequestID, string(d.Platform), string(d.Category), out.MIMEType)

	start := time.Now()
	written := e.write(writeCtx, r, &storage.WriteInput{
		Key:         key,
		Data:        out.Data,
		ContentType: out.MIMEType,
	})
	e.track(r, StageStorage, start)

	if written == nil {
		written = storage.Failure(e.storage.Name(), CodeStorageError, "backend returned no result")
	}

	e.metrics.RecordStorageWrite(e.storage.Name(), written.ErrorCode)
	tracing.SetStatus(span, written.ErrorCode)

	if written.OK {
		e.event(ctx, d.RequestID, audit.EventStorage, true, "image stored",
			map[string]string{"backend": e.storage.Name(), "key": key})
		return written
	}

	msg := prompt.Scrub(written.ErrorMessageSafe, r.prompt)
	r.logger.Warn("storage write failed", "backend", e.storage.Name(), "code", written.ErrorCode, "message", msg)
	e.event(ctx, d.RequestID, audit.EventStorage, false, msg,
		map[string]string{"backend": e.storage.Name(), "code": written.ErrorCode})
	return written
}

// generate calls p and converts a panic into a PROVIDER_ERROR output.
func (e *Engine) generate(ctx context.Context, r *run, p providers.Provider, in *providers.GenerateInput) (out *providers.GenerateOutput) {
	name := p.GetName()
	defer func() {
		if v := recover(); v != nil {
			r.logger.ErrorContext(ctx, "provider panicked", "provider", name, "panic", prompt.Scrub(fmt.Sprint(v), r.prompt))
			out = &providers.GenerateOutput{
				ErrorCode:        CodeProviderError,
				ErrorMessageSafe: name + ": provider failed unexpectedly",
			}
			if rec, ok := p.(providers.OutcomeRecorder); ok {
				rec.RecordOutcome(&providers.ProviderError{Provider: name, Message: "adapter panicked"})
			}
		}
	}()
	return p.Generate(ctx, in)
}

// write calls the storage backend and converts a panic into a
// STORAGE_ERROR output.
func (e *Engine) write(ctx context.Context, r *run, in *storage.WriteInput) (out *storage.WriteOutput) {
	name := e.storage.Name()
	defer func() {
		if v := recover(); v != nil {
			r.logger.ErrorContext(ctx, "storage backend panicked", "backend", name, "panic", prompt.Scrub(fmt.Sprint(v), r.prompt))
			out = storage.Failure(name, CodeStorageError, "storage backend failed unexpectedly")
		}
	}()
	return e.storage.Write(ctx, in)
}

// finish records the final job state, the result event and the outcome
// metric for res.
func (e *Engine) finish(ctx context.Context, r *run, res *GenerationResult, status audit.Status, outcome string) {
	d := &r.decision

	code := ""
	if res.Error != nil {
		code = res.Error.Code
		tracing.SetFallback(r.span, res.Fallback.Reason)
	}
	tracing.SetStatus(r.span, code)

	e.metrics.RecordGeneration(string(d.Platform), string(d.Category), outcome)

	job := audit.JobFromDecision(d, status)
	job.Width, job.Height = r.size.Width, r.size.Height
	if r.provider != "" {
		job.ProviderID = r.provider
	}
	if status != audit.StatusSkipped {
		job.StorageBackend = e.storage.Name()
	}
	if res.Image != nil {
		job.ImageURL = res.Image.URL
		job.AltText = res.Image.AltText
	}
	if res.Error != nil {
		job.ErrorCode = res.Error.Code
		job.ErrorMessage = res.Error.Message
		job.FallbackReason = res.Fallback.Reason
	}
	e.job(ctx, job)

	data := map[string]string{"status": string(status)}
	if code != "" {
		data["code"] = code
	}
	message := "image generated"
	if res.Error != nil {
		message = res.Error.Message
	}
	e.event(ctx, d.RequestID, audit.EventResult, res.OK, message, data)

	if res.OK {
		r.logger.InfoContext(ctx, "generation complete",
			"platform", d.Platform,
			"category", d.Category,
			"total_ms", res.TimingsMs[StageTotal],
		)
		return
	}
	r.logger.InfoContext(ctx, "generation fell back",
		"platform", d.Platform,
		"category", d.Category,
		"reason", res.Fallback.Reason,
		"code", code,
		"total_ms", res.TimingsMs[StageTotal],
	)
}

// finishAfterPanic records an unexpected failure. A sink or collector that
// panics again is logged and ignored so the result still reaches the caller.
func (e *Engine) finishAfterPanic(ctx context.Context, r *run, res *GenerationResult) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("recording unexpected failure panicked", "panic", prompt.Scrub(fmt.Sprint(p), r.prompt))
		}
	}()
	e.finish(ctx, r, res, audit.StatusFailed, OutcomeUnexpected)
}

func (e *Engine) track(r *run, stage string, start time.Time) {
	elapsed := time.Since(start)
	r.timings.add(stage, elapsed)
	e.metrics.RecordStage(stage, elapsed)
}

func (e *Engine) job(ctx context.Context, job *audit.JobRecord) {
	if e.audit == nil || job.RequestID == "" {
		return
	}
	defer e.recoverAudit("job", job.RequestID)
	e.audit.RecordJob(ctx, *job)
}

func (e *Engine) event(ctx context.Context, requestID string, typ audit.EventType, ok bool, message string, data map[string]string) {
	if e.audit == nil || requestID == "" {
		return
	}
	defer e.recoverAudit("event", requestID)
	e.audit.RecordEvent(ctx, audit.EventRecord{
		RequestID:   requestID,
		Type:        typ,
		OK:          ok,
		SafeMessage: message,
		SafeData:    data,
	})
}

// recoverAudit keeps a failing audit sink from changing a result.
func (e *Engine) recoverAudit(record, requestID string) {
	if v := recover(); v != nil {
		e.logger.Error("audit sink panicked; record dropped",
			"record", record,
			"request_id", requestID,
			"panic", fmt.Sprint(v),
		)
	}
}

func joinReasons(reasons []string) string {
	return strings.Join(reasons, ",")
}
