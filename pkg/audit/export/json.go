package export

import (
	"context"
	"encoding/json"
	"io"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// JSONExporter writes jobs as a JSON array.
type JSONExporter struct {
	Pretty bool
}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{Pretty: pretty}
}

// Export writes jobs as a JSON array. An empty slice writes "[]".
func (e *JSONExporter) Export(ctx context.Context, jobs []*audit.JobRecord, w io.Writer) error {
	if jobs == nil {
		jobs = []*audit.JobRecord{}
	}
	var (
		data []byte
		err  error
	)
	if e.Pretty {
		data, err = json.MarshalIndent(jobs, "", "  ")
	} else {
		data, err = json.Marshal(jobs)
	}
	if err != nil {
		return audit.NewExportError("json", 0, err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return audit.NewExportError("json", 0, err)
	}
	return nil
}

// ExportStream writes jobs from ch as one JSON array without holding them
// in memory.
func (e *JSONExporter) ExportStream(ctx context.Context, ch <-chan *audit.JobRecord, w io.Writer) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return audit.NewExportError("json", 0, err)
	}

	count := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-ch:
			if !ok {
				if _, err := io.WriteString(w, "]\n"); err != nil {
					return audit.NewExportError("json", count, err)
				}
				return nil
			}
			sep := ","
			if count == 0 {
				sep = ""
			}
			if e.Pretty && count > 0 {
				sep += "\n"
			}
			data, err := e.marshal(job)
			if err != nil {
				return audit.NewExportError("json", count, err)
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return audit.NewExportError("json", count, err)
			}
			if _, err := w.Write(data); err != nil {
				return audit.NewExportError("json", count, err)
			}
			count++
		}
	}
}

func (e *JSONExporter) marshal(job *audit.JobRecord) ([]byte, error) {
	if e.Pretty {
		return json.MarshalIndent(job, "  ", "  ")
	}
	return json.Marshal(job)
}
