package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/types"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testJob(i int) *audit.JobRecord {
	return &audit.JobRecord{
		RequestID:  fmt.Sprintf("req-%03d", i),
		Status:     audit.StatusGenerated,
		Platform:   "instagram",
		Category:   "promo",
		Aspect:     "4:5",
		Width:      1024,
		Height:     1280,
		ProviderID: "gemini",
		ImageURL:   "https://cdn.example.com/a.png",
		AltText:    "storefront, \"evening\"",
		Decision: audit.RedactedDecision{
			Mode:          types.ModeLive,
			TemplateID:    "promo.default",
			NegativeRules: []string{"no faces", "no logos"},
			Safety:        audit.RedactedSafety{IsAllowed: true, Reasons: []string{}},
		},
		CreatedAt: base,
		UpdatedAt: base.Add(time.Duration(i) * time.Minute),
	}
}

func TestCSVExporter_Export(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(true).Export(context.Background(), []*audit.JobRecord{testJob(1)}, &buf); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
	if len(rows[1]) != len(csvHeader) {
		t.Fatalf("row has %d columns, header %d", len(rows[1]), len(csvHeader))
	}

	got := map[string]string{}
	for i, name := range rows[0] {
		got[name] = rows[1][i]
	}
	want := map[string]string{
		"request_id":     "req-001",
		"width":          "1024",
		"alt_text":       "storefront, \"evening\"",
		"negative_rules": "no faces|no logos",
		"safety_allowed": "true",
		"updated_at":     "2026-03-01T12:01:00Z",
		"error_code":     "",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
}

func TestCSVExporter_NoHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCSVExporter(false).Export(context.Background(), []*audit.JobRecord{testJob(1), testJob(2)}, &buf); err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Errorf("lines = %d, want 2", lines)
	}
}

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name string
		jobs []*audit.JobRecord
		want int
	}{
		{"empty", nil, 0},
		{"single", []*audit.JobRecord{testJob(1)}, 1},
		{"many", []*audit.JobRecord{testJob(1), testJob(2), testJob(3)}, 3},
	}
	for _, tt := range tests {
		for _, pretty := range []bool{false, true} {
			t.Run(fmt.Sprintf("%s/pretty=%t", tt.name, pretty), func(t *testing.T) {
				var buf bytes.Buffer
				if err := NewJSONExporter(pretty).Export(context.Background(), tt.jobs, &buf); err != nil {
					t.Fatal(err)
				}
				var out []audit.JobRecord
				if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
					t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
				}
				if len(out) != tt.want {
					t.Errorf("len = %d, want %d", len(out), tt.want)
				}
			})
		}
	}
}

func TestJSONExporter_ExportStream(t *testing.T) {
	for _, pretty := range []bool{false, true} {
		ch := make(chan *audit.JobRecord, 3)
		for i := 1; i <= 3; i++ {
			ch <- testJob(i)
		}
		close(ch)

		var buf bytes.Buffer
		if err := NewJSONExporter(pretty).ExportStream(context.Background(), ch, &buf); err != nil {
			t.Fatal(err)
		}
		var out []audit.JobRecord
		if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
			t.Fatalf("pretty=%t: invalid JSON: %v\n%s", pretty, err, buf.String())
		}
		if len(out) != 3 || out[2].RequestID != "req-003" {
			t.Errorf("pretty=%t: got %+v", pretty, out)
		}
	}
}

func TestExportStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ch := make(chan *audit.JobRecord)

	for _, exp := range []Exporter{NewCSVExporter(true), NewJSONExporter(false)} {
		if err := exp.ExportStream(ctx, ch, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
			t.Errorf("%T: err = %v, want context.Canceled", exp, err)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExport_WriteError(t *testing.T) {
	err := NewJSONExporter(false).Export(context.Background(), []*audit.JobRecord{testJob(1)}, failingWriter{})
	var exportErr *audit.ExportError
	if !errors.As(err, &exportErr) || exportErr.Format != "json" {
		t.Fatalf("err = %v, want json ExportError", err)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("csv"); err != nil {
		t.Error(err)
	}
	if _, err := New("json"); err != nil {
		t.Error(err)
	}
	if _, err := New("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestStream_PagesThroughStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	defer store.Close()

	for i := 1; i <= 7; i++ {
		if err := store.UpsertJob(ctx, testJob(i)); err != nil {
			t.Fatal(err)
		}
	}
	fallback := testJob(8)
	fallback.Status = audit.StatusFallback
	if err := store.UpsertJob(ctx, fallback); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	q := &audit.Query{Status: audit.StatusGenerated, Limit: 3}
	if err := Stream(ctx, store, q, NewJSONExporter(false), &buf); err != nil {
		t.Fatal(err)
	}

	var out []audit.JobRecord
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 7 {
		t.Fatalf("exported %d jobs, want 7", len(out))
	}
	if out[0].RequestID != "req-007" || out[6].RequestID != "req-001" {
		t.Errorf("order = %s..%s, want newest first", out[0].RequestID, out[6].RequestID)
	}
	if q.Offset != 0 {
		t.Error("Stream modified the caller's query")
	}
}

func TestStream_InvalidQuery(t *testing.T) {
	err := Stream(context.Background(), storage.NewMemoryStore(), &audit.Query{Status: "bogus"}, NewCSVExporter(true), &bytes.Buffer{})
	var qe *audit.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("err = %v, want QueryError", err)
	}
}
