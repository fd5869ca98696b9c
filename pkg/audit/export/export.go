package export

import (
	"context"
	"fmt"
	"io"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// Exporter writes job records to w.
type Exporter interface {
	Export(ctx context.Context, jobs []*audit.JobRecord, w io.Writer) error
	ExportStream(ctx context.Context, jobs <-chan *audit.JobRecord, w io.Writer) error
}

// New returns the exporter for format ("csv" or "json").
func New(format string) (Exporter, error) {
	switch format {
	case "csv":
		return NewCSVExporter(true), nil
	case "json":
		return NewJSONExporter(false), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (use csv or json)", format)
	}
}

// Stream pages through store with q and feeds every matching job to exp.
// q.Offset is the starting offset; q.Limit is the page size.
func Stream(ctx context.Context, store audit.Store, q *audit.Query, exp Exporter, w io.Writer) error {
	page := *q
	if err := page.Normalize(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *audit.JobRecord, page.Limit)
	errCh := make(chan error, 1)

	go func() {
		defer close(jobs)
		for {
			batch, err := store.QueryJobs(ctx, &page)
			if err != nil {
				errCh <- err
				return
			}
			for _, job := range batch {
				select {
				case jobs <- job:
				case <-ctx.Done():
					return
				}
			}
			if len(batch) < page.Limit {
				return
			}
			page.Offset += len(batch)
		}
	}()

	if err := exp.ExportStream(ctx, jobs, w); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}
