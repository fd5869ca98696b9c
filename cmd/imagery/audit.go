package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/export"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/retention"
	auditstorage "github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/cli"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

var auditFlags struct {
	status   string
	platform string
	category string
	provider string
	since    string
	until    string
	limit    int
	offset   int
	days     int
	format   string
	out      string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and prune the audit log",
	Long: `Read job and event records written by generate and serve.

Subcommands:
  get    - Show one job and its events
  list   - List jobs with filters
  export - Write matching jobs as CSV or JSON
  prune  - Delete records older than the retention period`,
}

var auditGetCmd = &cobra.Command{
	Use:   "get <request-id>",
	Short: "Show one job and its events",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuditGet,
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	Long: `List jobs, newest first.

Time filters take RFC3339 timestamps or a duration back from now.

Examples:
  # Fallbacks in the last day
  imagery audit list --status fallback --since 24h

  # Promotion jobs served by gemini
  imagery audit list --category promotion --provider gemini -o json`,
	RunE: runAuditList,
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write matching jobs as CSV or JSON",
	Long: `Write every job matching the filters as CSV or JSON.

Jobs are read page by page, so exports of any size run in constant memory.

Examples:
  # All fallbacks of the last week as CSV
  imagery audit export --status fallback --since 168h --out fallbacks.csv

  # Everything as a JSON array on stdout
  imagery audit export --format json`,
	RunE: runAuditExport,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records older than the retention period",
	RunE:  runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditGetCmd, auditListCmd, auditExportCmd, auditPruneCmd)

	for _, c := range []*cobra.Command{auditListCmd, auditExportCmd} {
		f := c.Flags()
		f.StringVar(&auditFlags.status, "status", "", "filter by status (queued, generated, fallback, failed, skipped)")
		f.StringVar(&auditFlags.platform, "platform", "", "filter by platform")
		f.StringVar(&auditFlags.category, "category", "", "filter by category")
		f.StringVar(&auditFlags.provider, "provider", "", "filter by provider id")
		f.StringVar(&auditFlags.since, "since", "", "only jobs created at or after (RFC3339 or duration)")
		f.StringVar(&auditFlags.until, "until", "", "only jobs created before (RFC3339 or duration)")
		f.IntVar(&auditFlags.offset, "offset", 0, "skip this many jobs")
	}
	auditListCmd.Flags().IntVar(&auditFlags.limit, "limit", audit.DefaultQueryLimit, "maximum number of jobs")

	auditExportCmd.Flags().StringVar(&auditFlags.format, "format", "csv", "export format (csv, json)")
	auditExportCmd.Flags().StringVar(&auditFlags.out, "out", "-", "output file, - for stdout")

	auditPruneCmd.Flags().IntVar(&auditFlags.days, "days", 0, "override audit.retention.days")
}

// openAuditStore opens the configured store for reading.
func openAuditStore(ctx context.Context, cfg *config.Config) (audit.Store, error) {
	if !cfg.Audit.Enabled {
		return nil, cli.NewConfigError("audit.enabled", "audit is disabled")
	}
	if cfg.Audit.Driver == auditstorage.DriverMemory {
		return nil, cli.NewConfigError("audit.driver", "the memory store does not outlive a process")
	}
	store, err := auditstorage.Open(ctx, cfg.Audit)
	if err != nil {
		return nil, cli.NewCommandError("audit", err)
	}
	return store, nil
}

// JobDetail is the output of audit get.
type JobDetail struct {
	Job    *audit.JobRecord     `json:"job"`
	Events []*audit.EventRecord `json:"events"`
}

// Text implements cli.Texter.
func (d JobDetail) Text() string {
	j := d.Job
	kv := cli.KeyValues{
		{"Request ID", j.RequestID},
		{"Status", string(j.Status)},
		{"Consumer", j.ConsumerApp},
		{"Platform", j.Platform},
		{"Category", j.Category},
		{"Provider", j.ProviderID},
		{"Storage", j.StorageBackend},
		{"Image URL", j.ImageURL},
		{"Error Code", j.ErrorCode},
		{"Fallback", j.FallbackReason},
		{"Created", j.CreatedAt.Format(time.RFC3339)},
		{"Updated", j.UpdatedAt.Format(time.RFC3339)},
	}
	events := cli.Table{Headers: []string{"TIME", "TYPE", "OK", "MESSAGE"}}
	for _, e := range d.Events {
		events.Rows = append(events.Rows, []string{
			e.CreatedAt.Format(time.RFC3339),
			string(e.Type),
			boolText(e.OK),
			e.SafeMessage,
		})
	}
	return kv.Text() + "\n" + events.Text()
}

func runAuditGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openAuditStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	job, err := store.GetJob(ctx, args[0])
	if errors.Is(err, audit.ErrNotFound) {
		return cli.NewCommandError("audit get", fmt.Errorf("no job for request id %q", args[0]))
	}
	if err != nil {
		return cli.NewCommandError("audit get", err)
	}
	events, err := store.ListEvents(ctx, args[0])
	if err != nil {
		return cli.NewCommandError("audit get", err)
	}

	detail := JobDetail{Job: job, Events: events}
	return render(cmd, detail, detail)
}

func runAuditList(cmd *cobra.Command, args []string) error {
	q, err := listQuery(time.Now())
	if err != nil {
		return cli.NewConfigError("audit list", err.Error())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openAuditStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	jobs, err := store.QueryJobs(ctx, q)
	if err != nil {
		return cli.NewCommandError("audit list", err)
	}

	t := cli.Table{Headers: []string{"REQUEST ID", "STATUS", "PLATFORM", "CATEGORY", "PROVIDER", "CODE", "CREATED"}}
	for _, j := range jobs {
		t.Rows = append(t.Rows, []string{
			j.RequestID,
			string(j.Status),
			j.Platform,
			j.Category,
			j.ProviderID,
			j.ErrorCode,
			j.CreatedAt.Format(time.RFC3339),
		})
	}
	if jobs == nil {
		jobs = []*audit.JobRecord{}
	}
	return render(cmd, jobs, t)
}

// listQuery builds the job query from the list flags.
func listQuery(now time.Time) (*audit.Query, error) {
	q := &audit.Query{
		Status:     audit.Status(auditFlags.status),
		Platform:   auditFlags.platform,
		Category:   auditFlags.category,
		ProviderID: auditFlags.provider,
		Limit:      auditFlags.limit,
		Offset:     auditFlags.offset,
	}
	var err error
	if q.Since, err = parseTimeFlag("since", auditFlags.since, now); err != nil {
		return nil, err
	}
	if q.Until, err = parseTimeFlag("until", auditFlags.until, now); err != nil {
		return nil, err
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	return q, nil
}

// parseTimeFlag accepts an RFC3339 timestamp or a duration back from now.
func parseTimeFlag(name, value string, now time.Time) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("--%s: want RFC3339 or a positive duration, got %q", name, value)
	}
	t := now.Add(-d)
	return &t, nil
}

// exportPageSize is the number of jobs read per store query.
const exportPageSize = 500

func runAuditExport(cmd *cobra.Command, args []string) error {
	exp, err := export.New(auditFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}
	q, err := listQuery(time.Now())
	if err != nil {
		return cli.NewConfigError("audit export", err.Error())
	}
	q.Limit = exportPageSize

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openAuditStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	w := cmd.OutOrStdout()
	if auditFlags.out != "" && auditFlags.out != "-" {
		f, err := os.Create(auditFlags.out)
		if err != nil {
			return cli.NewCommandError("audit export", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Stream(ctx, store, q, exp, w); err != nil {
		return cli.NewCommandError("audit export", err)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openAuditStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	days := cfg.Audit.Retention.Days
	if auditFlags.days > 0 {
		days = auditFlags.days
	}
	pruner := retention.NewPruner(store, retention.Config{RetentionDays: days})
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		return cli.NewCommandError("audit prune", err)
	}

	result := cli.KeyValues{
		{"Retention Days", strconv.Itoa(days)},
		{"Deleted", strconv.FormatInt(deleted, 10)},
	}
	return render(cmd, map[string]int64{"retentionDays": int64(days), "deleted": deleted}, result)
}
