package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// DriverMemory selects the in-process store.
const DriverMemory = "memory"

// MemoryStore implements audit.Store in memory, for tests and dry runs.
type MemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]*audit.JobRecord
	events []*audit.EventRecord
	closed bool
	now    func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*audit.JobRecord),
		now:  time.Now,
	}
}

var errClosed = errors.New("store is closed")

// UpsertJob stores a copy of job, keeping the original CreatedAt.
func (m *MemoryStore) UpsertJob(ctx context.Context, job *audit.JobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return audit.NewStoreError(DriverMemory, "upsert_job", errClosed)
	}

	now := m.now()
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = now
	}
	if existing, ok := m.jobs[job.RequestID]; ok {
		job.CreatedAt = existing.CreatedAt
	} else if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	cp := *job
	cp.Decision.NegativeRules = append([]string(nil), job.Decision.NegativeRules...)
	cp.Decision.Safety.Reasons = append([]string(nil), job.Decision.Safety.Reasons...)
	m.jobs[job.RequestID] = &cp
	return nil
}

// AppendEvent stores a copy of event.
func (m *MemoryStore) AppendEvent(ctx context.Context, event *audit.EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return audit.NewStoreError(DriverMemory, "append_event", errClosed)
	}
	if event.ID == "" {
		return audit.NewStoreError(DriverMemory, "append_event", errors.New("event id is required"))
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = m.now()
	}
	cp := *event
	if event.SafeData != nil {
		cp.SafeData = make(map[string]string, len(event.SafeData))
		for k, v := range event.SafeData {
			cp.SafeData[k] = v
		}
	}
	m.events = append(m.events, &cp)
	return nil
}

// GetJob returns a copy of the job for requestID.
func (m *MemoryStore) GetJob(ctx context.Context, requestID string) (*audit.JobRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[requestID]
	if !ok {
		return nil, audit.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

// QueryJobs filters jobs, most recently updated first.
func (m *MemoryStore) QueryJobs(ctx context.Context, q *audit.Query) ([]*audit.JobRecord, error) {
	if q == nil {
		q = &audit.Query{}
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]*audit.JobRecord, 0, len(m.jobs))
	for _, job := range m.jobs {
		if matches(job, q) {
			cp := *job
			matched = append(matched, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].UpdatedAt.Equal(matched[j].UpdatedAt) {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].RequestID < matched[j].RequestID
	})

	if q.Offset >= len(matched) {
		return []*audit.JobRecord{}, nil
	}
	matched = matched[q.Offset:]
	if len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func matches(job *audit.JobRecord, q *audit.Query) bool {
	switch {
	case q.Status != "" && job.Status != q.Status:
		return false
	case q.Platform != "" && job.Platform != q.Platform:
		return false
	case q.Category != "" && job.Category != q.Category:
		return false
	case q.ProviderID != "" && job.ProviderID != q.ProviderID:
		return false
	case q.Since != nil && job.UpdatedAt.Before(*q.Since):
		return false
	case q.Until != nil && job.UpdatedAt.After(*q.Until):
		return false
	}
	return true
}

// ListEvents returns a request's events in append order.
func (m *MemoryStore) ListEvents(ctx context.Context, requestID string) ([]*audit.EventRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	events := []*audit.EventRecord{}
	for _, e := range m.events {
		if e.RequestID == requestID {
			cp := *e
			events = append(events, &cp)
		}
	}
	return events, nil
}

// DeleteBefore removes old jobs and events.
func (m *MemoryStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, job := range m.jobs {
		if job.UpdatedAt.Before(t) {
			delete(m.jobs, id)
			deleted++
		}
	}
	kept := m.events[:0]
	for _, e := range m.events {
		if e.CreatedAt.Before(t) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return deleted, nil
}

// Ping fails once the store is closed.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return audit.NewStoreError(DriverMemory, "ping", errClosed)
	}
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
