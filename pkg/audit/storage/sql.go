package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// Supported SQL drivers.
const (
	DriverSQLite3  = "sqlite3"  // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"   // modernc.org/sqlite (pure Go)
	DriverPostgres = "postgres" // github.com/lib/pq
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know.
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// SQLConfig configures a SQL store.
type SQLConfig struct {
	// Driver is one of DriverSQLite3, DriverSQLite or DriverPostgres.
	Driver string

	// DSN is a file path for the sqlite drivers and a connection string
	// for postgres.
	DSN string

	// MaxOpenConns caps open connections.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long SQLite waits on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLStore implements audit.Store on database/sql through sqlx.
type SQLStore struct {
	db     *sqlx.DB
	config SQLConfig
	now    func() time.Time
	logger *slog.Logger
}

// NewSQLStore opens the database and creates the schema.
func NewSQLStore(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	switch cfg.Driver {
	case DriverSQLite3, DriverSQLite, DriverPostgres:
	default:
		return nil, audit.NewStoreError(cfg.Driver, "open", fmt.Errorf("unsupported driver %q", cfg.Driver))
	}
	if cfg.DSN == "" {
		return nil, audit.NewStoreError(cfg.Driver, "open", errors.New("dsn is required"))
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if isSQLite(cfg.Driver) && cfg.DSN != ":memory:" {
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, audit.NewStoreError(cfg.Driver, "open", err)
			}
		}
	}

	db, err := sqlx.Open(cfg.Driver, dataSource(cfg))
	if err != nil {
		return nil, audit.NewStoreError(cfg.Driver, "open", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	if cfg.DSN == ":memory:" {
		// every connection would see its own empty database
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{
		db:     db,
		config: cfg,
		now:    time.Now,
		logger: slog.Default().With("component", "audit.storage.sql", "driver", cfg.Driver),
	}
	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("audit store initialized", "max_open_conns", cfg.MaxOpenConns)
	return s, nil
}

// dataSource adds the busy timeout to sqlite DSNs so it applies to every
// pooled connection, not only the one running the PRAGMA.
func dataSource(cfg SQLConfig) string {
	if !isSQLite(cfg.Driver) || cfg.DSN == ":memory:" || strings.Contains(cfg.DSN, "busy_timeout") {
		return cfg.DSN
	}
	sep := "?"
	if strings.Contains(cfg.DSN, "?") {
		sep = "&"
	}
	ms := cfg.BusyTimeout.Milliseconds()
	if cfg.Driver == DriverSQLite {
		return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)", cfg.DSN, sep, ms)
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", cfg.DSN, sep, ms)
}

func isSQLite(driver string) bool {
	return driver == DriverSQLite3 || driver == DriverSQLite
}

func (s *SQLStore) initialize(ctx context.Context) error {
	if isSQLite(s.config.Driver) {
		pragmas := []string{
			"PRAGMA journal_mode=WAL",
			fmt.Sprintf("PRAGMA busy_timeout=%d", s.config.BusyTimeout.Milliseconds()),
		}
		for _, p := range pragmas {
			if _, err := s.db.ExecContext(ctx, p); err != nil {
				return s.storeErr("pragma", err)
			}
		}
	}

	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return s.storeErr("create_schema", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertSchemaVersion), SchemaVersion, s.now().UnixNano()); err != nil {
		return s.storeErr("insert_schema_version", err)
	}
	var version int
	if err := s.db.GetContext(ctx, &version, getSchemaVersion); err != nil {
		return s.storeErr("get_schema_version", err)
	}
	if version != SchemaVersion {
		return s.storeErr("schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

func (s *SQLStore) storeErr(op string, err error) error {
	return audit.NewStoreError(s.config.Driver, op, err)
}

// UpsertJob inserts the job or replaces every column except created_at.
func (s *SQLStore) UpsertJob(ctx context.Context, job *audit.JobRecord) error {
	now := s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = now
	}
	row, err := toJobRow(job)
	if err != nil {
		return s.storeErr("encode_job", err)
	}
	if _, err := s.db.NamedExecContext(ctx, upsertJob, row); err != nil {
		return s.storeErr("upsert_job", err)
	}
	return nil
}

// AppendEvent inserts an event.
func (s *SQLStore) AppendEvent(ctx context.Context, event *audit.EventRecord) error {
	if event.ID == "" {
		return s.storeErr("append_event", errors.New("event id is required"))
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	row, err := toEventRow(event)
	if err != nil {
		return s.storeErr("encode_event", err)
	}
	if _, err := s.db.NamedExecContext(ctx, insertEvent, row); err != nil {
		return s.storeErr("append_event", err)
	}
	return nil
}

// GetJob returns the job for requestID.
func (s *SQLStore) GetJob(ctx context.Context, requestID string) (*audit.JobRecord, error) {
	var row jobRow
	query := s.db.Rebind("SELECT " + jobColumns + " FROM image_jobs WHERE request_id = ?")
	if err := s.db.GetContext(ctx, &row, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, audit.ErrNotFound
		}
		return nil, s.storeErr("get_job", err)
	}
	job, err := row.record()
	if err != nil {
		return nil, s.storeErr("decode_job", err)
	}
	return job, nil
}

// QueryJobs returns matching jobs, most recently updated first.
func (s *SQLStore) QueryJobs(ctx context.Context, q *audit.Query) ([]*audit.JobRecord, error) {
	if q == nil {
		q = &audit.Query{}
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(q)
	query := "SELECT " + jobColumns + " FROM image_jobs"
	if where != "" {
		query += " WHERE " + where
	}
	query += fmt.Sprintf(" ORDER BY updated_at DESC, request_id ASC LIMIT %d", q.Limit)
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	var rows []jobRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, s.storeErr("query_jobs", err)
	}
	jobs := make([]*audit.JobRecord, 0, len(rows))
	for i := range rows {
		job, err := rows[i].record()
		if err != nil {
			return nil, s.storeErr("decode_job", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func buildWhereClause(q *audit.Query) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}
	if q.Status != "" {
		add("status = ?", string(q.Status))
	}
	if q.Platform != "" {
		add("platform = ?", q.Platform)
	}
	if q.Category != "" {
		add("category = ?", q.Category)
	}
	if q.ProviderID != "" {
		add("provider_id = ?", q.ProviderID)
	}
	if q.Since != nil {
		add("updated_at >= ?", q.Since.UnixNano())
	}
	if q.Until != nil {
		add("updated_at <= ?", q.Until.UnixNano())
	}
	return strings.Join(conds, " AND "), args
}

// ListEvents returns a request's events in append order.
func (s *SQLStore) ListEvents(ctx context.Context, requestID string) ([]*audit.EventRecord, error) {
	var rows []eventRow
	query := s.db.Rebind(`SELECT id, request_id, type, ok, safe_message, safe_data, created_at
FROM image_events WHERE request_id = ? ORDER BY created_at ASC, id ASC`)
	if err := s.db.SelectContext(ctx, &rows, query, requestID); err != nil {
		return nil, s.storeErr("list_events", err)
	}
	events := make([]*audit.EventRecord, 0, len(rows))
	for i := range rows {
		e, err := rows[i].record()
		if err != nil {
			return nil, s.storeErr("decode_event", err)
		}
		events = append(events, e)
	}
	return events, nil
}

// DeleteBefore removes old jobs and events in one transaction.
func (s *SQLStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	cutoff := t.UnixNano()
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, s.storeErr("delete_before", err)
	}
	defer tx.Rollback()

	var total int64
	for _, stmt := range []string{
		"DELETE FROM image_jobs WHERE updated_at < ?",
		"DELETE FROM image_events WHERE created_at < ?",
	} {
		res, err := tx.ExecContext(ctx, tx.Rebind(stmt), cutoff)
		if err != nil {
			return 0, s.storeErr("delete_before", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, s.storeErr("delete_before", err)
		}
		total += n
	}
	if err := tx.Commit(); err != nil {
		return 0, s.storeErr("delete_before", err)
	}
	return total, nil
}

// Ping checks the database connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return s.storeErr("ping", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
