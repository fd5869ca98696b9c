package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// Config contains recorder settings.
type Config struct {
	// BufferSize is the async queue capacity.
	// Default: 1000
	BufferSize int

	// WriteTimeout bounds a single store write.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxMessageLength truncates SafeMessage and ErrorMessage.
	// Default: 500
	MaxMessageLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		BufferSize:       1000,
		WriteTimeout:     5 * time.Second,
		MaxMessageLength: 500,
	}
}

type op struct {
	job     *audit.JobRecord
	event   *audit.EventRecord
	flushed chan struct{}
}

// Recorder writes audit records asynchronously through a single worker,
// so records of one process reach the store in submission order. A full
// queue drops the record: auditing never blocks or fails a generation.
type Recorder struct {
	store  audit.Store
	config *Config
	queue  chan op
	wg     sync.WaitGroup
	now    func() time.Time
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool

	dropped atomic.Int64
	failed  atomic.Int64
}

// New starts a recorder writing to store. The store is not closed by
// Close.
func New(store audit.Store, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if config.MaxMessageLength <= 0 {
		config.MaxMessageLength = 500
	}

	r := &Recorder{
		store:  store,
		config: config,
		queue:  make(chan op, config.BufferSize),
		now:    time.Now,
		logger: slog.Default().With("component", "audit.recorder"),
	}
	r.wg.Add(1)
	go r.worker()

	r.logger.Debug("audit recorder started",
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// RecordJob enqueues an upsert of job. UpdatedAt is stamped at enqueue
// time so the queued and final records of a request keep their order.
func (r *Recorder) RecordJob(ctx context.Context, job audit.JobRecord) {
	job.ErrorMessage = TruncateString(job.ErrorMessage, r.config.MaxMessageLength)
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = r.now()
	}
	r.enqueue(op{job: &job})
}

// RecordEvent enqueues an event. A missing ID gets a UUID.
func (r *Recorder) RecordEvent(ctx context.Context, event audit.EventRecord) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = r.now()
	}
	event.SafeMessage = TruncateString(event.SafeMessage, r.config.MaxMessageLength)
	r.enqueue(op{event: &event})
}

func (r *Recorder) enqueue(o op) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.drop(o, "recorder closed")
		return
	}
	select {
	case r.queue <- o:
	default:
		r.drop(o, "queue full")
	}
}

func (r *Recorder) drop(o op, why string) {
	r.dropped.Add(1)
	requestID := ""
	switch {
	case o.job != nil:
		requestID = o.job.RequestID
	case o.event != nil:
		requestID = o.event.RequestID
	}
	r.logger.Warn("dropping audit record",
		"request_id", requestID,
		"reason", why,
		"capacity", r.config.BufferSize,
	)
}

// Flush waits until every record enqueued before the call is written, or
// ctx is done.
func (r *Recorder) Flush(ctx context.Context) error {
	done := make(chan struct{})
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil
	}
	select {
	case r.queue <- op{flushed: done}:
	case <-ctx.Done():
		r.mu.RUnlock()
		return ctx.Err()
	}
	r.mu.RUnlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting records and waits for the queue to drain.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Debug("audit recorder stopped",
		"dropped", r.dropped.Load(),
		"failed", r.failed.Load(),
	)
	return nil
}

// Dropped returns the number of records discarded without a write attempt.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Failed returns the number of store writes that returned an error.
func (r *Recorder) Failed() int64 { return r.failed.Load() }

func (r *Recorder) worker() {
	defer r.wg.Done()
	for o := range r.queue {
		if o.flushed != nil {
			close(o.flushed)
			continue
		}
		r.write(o)
	}
}

func (r *Recorder) write(o op) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	var err error
	var requestID string
	switch {
	case o.job != nil:
		requestID = o.job.RequestID
		err = r.store.UpsertJob(ctx, o.job)
	case o.event != nil:
		requestID = o.event.RequestID
		err = r.store.AppendEvent(ctx, o.event)
	}
	if err != nil {
		r.failed.Add(1)
		r.logger.Error("failed to write audit record",
			"request_id", requestID,
			"error", err,
		)
		return
	}

	if d := time.Since(start); d > r.config.WriteTimeout/2 {
		r.logger.Warn("slow audit write",
			"request_id", requestID,
			"duration_ms", d.Milliseconds(),
		)
	}
}

// TruncateString shortens s to at most maxLen runes, ending in "..." when
// cut.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
