// Package audit defines the job and event records persisted for every
// generation attempt, and the Store interface that holds them.
//
// A JobRecord is upserted by request id, so the "queued" record written
// before a provider call is replaced by the final "generated", "fallback",
// "failed" or "skipped" record. EventRecords are append-only.
//
// Decisions are stored through Redact, which drops the plan variables and
// overlay text. The assembled prompt never reaches this package.
//
// Subpackages:
//   - storage: SQL (sqlite3, sqlite, postgres) and in-memory stores
//   - recorder: asynchronous writer used by the engine
//   - retention: scheduled pruning of old records
package audit
