package recorder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/storage"
)

func TestRecorder_JobAndEvents(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := New(store, &Config{BufferSize: 10})
	ctx := context.Background()

	rec.RecordJob(ctx, audit.JobRecord{RequestID: "req-1", Status: audit.StatusQueued, Platform: "x", Category: "evergreen"})
	rec.RecordEvent(ctx, audit.EventRecord{RequestID: "req-1", Type: audit.EventDecision, OK: true})
	rec.RecordJob(ctx, audit.JobRecord{RequestID: "req-1", Status: audit.StatusGenerated, Platform: "x", Category: "evergreen"})
	rec.RecordEvent(ctx, audit.EventRecord{RequestID: "req-1", Type: audit.EventResult, OK: true})

	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	job, err := store.GetJob(ctx, "req-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if job.Status != audit.StatusGenerated {
		t.Errorf("Status = %s, want generated (last write wins)", job.Status)
	}

	events, _ := store.ListEvents(ctx, "req-1")
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != audit.EventDecision || events[1].Type != audit.EventResult {
		t.Errorf("events out of order: %s, %s", events[0].Type, events[1].Type)
	}
	if events[0].ID == "" || events[0].ID == events[1].ID {
		t.Errorf("event ids not assigned: %q %q", events[0].ID, events[1].ID)
	}
}

func TestRecorder_Flush(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := New(store, nil)
	defer rec.Close()

	rec.RecordJob(context.Background(), audit.JobRecord{RequestID: "req-flush", Status: audit.StatusSkipped})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rec.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if _, err := store.GetJob(context.Background(), "req-flush"); err != nil {
		t.Errorf("job not written after Flush: %v", err)
	}
}

// blockingStore blocks every write until release is closed.
type blockingStore struct {
	*storage.MemoryStore
	release chan struct{}
	writes  atomic.Int32
}

func (b *blockingStore) UpsertJob(ctx context.Context, job *audit.JobRecord) error {
	<-b.release
	b.writes.Add(1)
	return b.MemoryStore.UpsertJob(ctx, job)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	store := &blockingStore{MemoryStore: storage.NewMemoryStore(), release: make(chan struct{})}
	rec := New(store, &Config{BufferSize: 2})

	start := time.Now()
	for i := 0; i < 10; i++ {
		rec.RecordJob(context.Background(), audit.JobRecord{RequestID: "r", Status: audit.StatusQueued})
	}
	if time.Since(start) > time.Second {
		t.Error("RecordJob blocked on a full queue")
	}
	if rec.Dropped() == 0 {
		t.Error("expected dropped records")
	}

	close(store.release)
	rec.Close()
	if got := int64(store.writes.Load()) + rec.Dropped(); got != 10 {
		t.Errorf("writes + dropped = %d, want 10", got)
	}
}

type failingStore struct {
	*storage.MemoryStore
}

func (f failingStore) AppendEvent(context.Context, *audit.EventRecord) error {
	return errors.New("disk full")
}

func TestRecorder_StoreFailure(t *testing.T) {
	rec := New(failingStore{storage.NewMemoryStore()}, nil)
	rec.RecordEvent(context.Background(), audit.EventRecord{RequestID: "r", Type: audit.EventResult})
	rec.Close()

	if rec.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", rec.Failed())
	}
}

func TestRecorder_AfterClose(t *testing.T) {
	rec := New(storage.NewMemoryStore(), nil)
	rec.Close()

	rec.RecordJob(context.Background(), audit.JobRecord{RequestID: "late"})
	if rec.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", rec.Dropped())
	}
	if err := rec.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := rec.Flush(context.Background()); err != nil {
		t.Errorf("Flush after Close: %v", err)
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := New(store, &Config{BufferSize: 500})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.RecordEvent(context.Background(), audit.EventRecord{RequestID: "shared", Type: audit.EventProvider})
		}()
	}
	wg.Wait()
	rec.Close()

	events, _ := store.ListEvents(context.Background(), "shared")
	if int64(len(events))+rec.Dropped() != 100 {
		t.Errorf("events %d + dropped %d != 100", len(events), rec.Dropped())
	}
}

func TestRecorder_TruncatesMessages(t *testing.T) {
	store := storage.NewMemoryStore()
	rec := New(store, &Config{MaxMessageLength: 10})
	rec.RecordEvent(context.Background(), audit.EventRecord{
		RequestID:   "r",
		Type:        audit.EventProvider,
		SafeMessage: strings.Repeat("x", 50),
	})
	rec.Close()

	events, _ := store.ListEvents(context.Background(), "r")
	if len(events) != 1 || events[0].SafeMessage != "xxxxxxx..." {
		t.Errorf("events = %+v", events)
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 2, "ab"},
		{"ééééé", 4, "é..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
