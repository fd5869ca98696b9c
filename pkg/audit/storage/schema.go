package storage

// SchemaVersion is the current audit schema version.
const SchemaVersion = 1

// schemaStatements are portable across SQLite and PostgreSQL. Timestamps
// are unix nanoseconds so every driver scans them the same way.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS image_jobs (
    request_id      TEXT PRIMARY KEY,
    status          TEXT NOT NULL,
    consumer_app    TEXT NOT NULL DEFAULT '',
    platform        TEXT NOT NULL,
    category        TEXT NOT NULL,
    aspect          TEXT NOT NULL DEFAULT '',
    width           INTEGER NOT NULL DEFAULT 0,
    height          INTEGER NOT NULL DEFAULT 0,
    provider_id     TEXT NOT NULL DEFAULT '',
    storage_backend TEXT NOT NULL DEFAULT '',
    image_url       TEXT NOT NULL DEFAULT '',
    alt_text        TEXT NOT NULL DEFAULT '',
    error_code      TEXT NOT NULL DEFAULT '',
    error_message   TEXT NOT NULL DEFAULT '',
    fallback_reason TEXT NOT NULL DEFAULT '',
    decision_json   TEXT NOT NULL,
    created_at      BIGINT NOT NULL,
    updated_at      BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS image_events (
    id           TEXT PRIMARY KEY,
    request_id   TEXT NOT NULL,
    type         TEXT NOT NULL,
    ok           INTEGER NOT NULL,
    safe_message TEXT NOT NULL DEFAULT '',
    safe_data    TEXT NOT NULL DEFAULT '{}',
    created_at   BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_image_jobs_updated_at ON image_jobs(updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_image_jobs_status ON image_jobs(status)`,
	`CREATE INDEX IF NOT EXISTS idx_image_jobs_platform ON image_jobs(platform)`,
	`CREATE INDEX IF NOT EXISTS idx_image_events_request_id ON image_events(request_id, created_at)`,
}

const insertSchemaVersion = `INSERT INTO schema_version (version, applied_at) VALUES (?, ?)
ON CONFLICT (version) DO NOTHING`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`

const upsertJob = `INSERT INTO image_jobs (
    request_id, status, consumer_app, platform, category, aspect, width, height,
    provider_id, storage_backend, image_url, alt_text, error_code, error_message,
    fallback_reason, decision_json, created_at, updated_at
) VALUES (
    :request_id, :status, :consumer_app, :platform, :category, :aspect, :width, :height,
    :provider_id, :storage_backend, :image_url, :alt_text, :error_code, :error_message,
    :fallback_reason, :decision_json, :created_at, :updated_at
)
ON CONFLICT (request_id) DO UPDATE SET
    status = excluded.status,
    consumer_app = excluded.consumer_app,
    platform = excluded.platform,
    category = excluded.category,
    aspect = excluded.aspect,
    width = excluded.width,
    height = excluded.height,
    provider_id = excluded.provider_id,
    storage_backend = excluded.storage_backend,
    image_url = excluded.image_url,
    alt_text = excluded.alt_text,
    error_code = excluded.error_code,
    error_message = excluded.error_message,
    fallback_reason = excluded.fallback_reason,
    decision_json = excluded.decision_json,
    updated_at = excluded.updated_at`

const insertEvent = `INSERT INTO image_events (id, request_id, type, ok, safe_message, safe_data, created_at)
VALUES (:id, :request_id, :type, :ok, :safe_message, :safe_data, :created_at)`

const jobColumns = `request_id, status, consumer_app, platform, category, aspect, width, height,
    provider_id, storage_backend, image_url, alt_text, error_code, error_message,
    fallback_reason, decision_json, created_at, updated_at`
