package audit

import (
	"context"
	"time"
)

// Status is the lifecycle state of a job record.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusGenerated Status = "generated"
	StatusFallback  Status = "fallback"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusQueued, StatusGenerated, StatusFallback, StatusFailed, StatusSkipped:
		return true
	}
	return false
}

// EventType classifies an event record.
type EventType string

const (
	EventDecision EventType = "decision"
	EventProvider EventType = "provider"
	EventStorage  EventType = "storage"
	EventResult   EventType = "result"
)

// JobRecord is the upsert-by-RequestID record of one generation attempt.
// Resubmitting a RequestID overwrites every field except CreatedAt.
type JobRecord struct {
	RequestID      string           `json:"requestId"`
	Status         Status           `json:"status"`
	ConsumerApp    string           `json:"consumerApp,omitempty"`
	Platform       string           `json:"platform"`
	Category       string           `json:"category"`
	Aspect         string           `json:"aspect,omitempty"`
	Width          int              `json:"width,omitempty"`
	Height         int              `json:"height,omitempty"`
	ProviderID     string           `json:"providerId,omitempty"`
	StorageBackend string           `json:"storageBackend,omitempty"`
	ImageURL       string           `json:"imageUrl,omitempty"`
	AltText        string           `json:"altText,omitempty"`
	ErrorCode      string           `json:"errorCode,omitempty"`
	ErrorMessage   string           `json:"errorMessage,omitempty"`
	FallbackReason string           `json:"fallbackReason,omitempty"`
	Decision       RedactedDecision `json:"decision"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// EventRecord is an append-only audit trail entry. SafeMessage and
// SafeData must already be free of prompt text.
type EventRecord struct {
	ID          string            `json:"id"`
	RequestID   string            `json:"requestId"`
	Type        EventType         `json:"type"`
	OK          bool              `json:"ok"`
	SafeMessage string            `json:"safeMessage,omitempty"`
	SafeData    map[string]string `json:"safeData,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Query filters job records. Zero fields do not filter.
type Query struct {
	Status     Status     `json:"status,omitempty"`
	Platform   string     `json:"platform,omitempty"`
	Category   string     `json:"category,omitempty"`
	ProviderID string     `json:"providerId,omitempty"`
	Since      *time.Time `json:"since,omitempty"`
	Until      *time.Time `json:"until,omitempty"`

	// Limit defaults to DefaultQueryLimit and is capped at MaxQueryLimit.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 1000
)

// Normalize validates q and fills the default limit.
func (q *Query) Normalize() error {
	if q.Status != "" && !q.Status.Valid() {
		return NewQueryError("status", string(q.Status))
	}
	if q.Limit < 0 {
		return NewQueryError("limit", "negative")
	}
	if q.Offset < 0 {
		return NewQueryError("offset", "negative")
	}
	if q.Since != nil && q.Until != nil && q.Until.Before(*q.Since) {
		return NewQueryError("until", "before since")
	}
	if q.Limit == 0 {
		q.Limit = DefaultQueryLimit
	}
	if q.Limit > MaxQueryLimit {
		q.Limit = MaxQueryLimit
	}
	return nil
}

// Store persists job and event records. Implementations must be safe for
// concurrent use.
type Store interface {
	// UpsertJob inserts or replaces the job for job.RequestID.
	UpsertJob(ctx context.Context, job *JobRecord) error

	// AppendEvent adds an event record.
	AppendEvent(ctx context.Context, event *EventRecord) error

	// GetJob returns ErrNotFound when no job exists.
	GetJob(ctx context.Context, requestID string) (*JobRecord, error)

	// QueryJobs returns jobs newest first.
	QueryJobs(ctx context.Context, q *Query) ([]*JobRecord, error)

	// ListEvents returns the events of a request in append order.
	ListEvents(ctx context.Context, requestID string) ([]*EventRecord, error)

	// DeleteBefore removes jobs last updated and events created before t.
	// It returns the number of rows removed.
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
