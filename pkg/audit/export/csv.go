package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// CSVExporter writes one row per job. Slice fields are joined with "|".
type CSVExporter struct {
	IncludeHeader bool
}

// NewCSVExporter creates a CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{IncludeHeader: includeHeader}
}

var csvHeader = []string{
	"request_id", "status", "consumer_app", "platform", "category",
	"aspect", "width", "height", "provider_id", "storage_backend",
	"image_url", "alt_text", "error_code", "error_message", "fallback_reason",
	"mode", "energy", "text_allowance", "template_id", "negative_rules",
	"safety_allowed", "safety_reasons", "safety_used_fallback", "model_tier",
	"created_at", "updated_at",
}

// Export writes jobs as CSV.
func (e *CSVExporter) Export(ctx context.Context, jobs []*audit.JobRecord, w io.Writer) error {
	ch := make(chan *audit.JobRecord, len(jobs))
	for _, job := range jobs {
		ch <- job
	}
	close(ch)
	return e.ExportStream(ctx, ch, w)
}

// ExportStream writes jobs from ch until it is closed, flushing every 100
// rows.
func (e *CSVExporter) ExportStream(ctx context.Context, ch <-chan *audit.JobRecord, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if e.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return audit.NewExportError("csv", 0, err)
		}
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-ch:
			if !ok {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", count, err)
				}
				return nil
			}
			if err := writer.Write(row(job)); err != nil {
				return audit.NewExportError("csv", count, err)
			}
			count++
			if count%100 == 0 {
				writer.Flush()
				if err := writer.Error(); err != nil {
					return audit.NewExportError("csv", count, err)
				}
			}
		}
	}
}

func row(job *audit.JobRecord) []string {
	d := job.Decision
	return []string{
		job.RequestID,
		string(job.Status),
		job.ConsumerApp,
		job.Platform,
		job.Category,
		job.Aspect,
		itoa(job.Width),
		itoa(job.Height),
		job.ProviderID,
		job.StorageBackend,
		job.ImageURL,
		job.AltText,
		job.ErrorCode,
		job.ErrorMessage,
		job.FallbackReason,
		string(d.Mode),
		string(d.Energy),
		string(d.TextAllowance),
		d.TemplateID,
		strings.Join(d.NegativeRules, "|"),
		strconv.FormatBool(d.Safety.IsAllowed),
		strings.Join(d.Safety.Reasons, "|"),
		strconv.FormatBool(d.Safety.UsedFallback),
		string(d.ModelTier),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	}
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
