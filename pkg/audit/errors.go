package audit

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by GetJob for unknown request ids.
var ErrNotFound = errors.New("audit record not found")

// StoreError is an error from a store backend.
type StoreError struct {
	Backend   string // "sqlite3", "sqlite", "postgres", "memory"
	Operation string // "open", "upsert_job", "query_jobs", ...
	Cause     error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("audit store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StoreError) Unwrap() error {
	return e.Cause
}

// NewStoreError creates a StoreError.
func NewStoreError(backend, operation string, cause error) *StoreError {
	return &StoreError{Backend: backend, Operation: operation, Cause: cause}
}

// QueryError reports an invalid query field.
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid audit query: %s: %s", e.Field, e.Reason)
}

// NewQueryError creates a QueryError.
func NewQueryError(field, reason string) *QueryError {
	return &QueryError{Field: field, Reason: reason}
}

// RetentionError wraps a pruning failure.
type RetentionError struct {
	RetentionDays int
	Cause         error
}

func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [retention_days=%d]: %v", e.RetentionDays, e.Cause)
}

func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// ExportError wraps a failure while writing exported records.
type ExportError struct {
	Format  string
	Written int
	Cause   error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, written=%d]: %v", e.Format, e.Written, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates an ExportError.
func NewExportError(format string, written int, cause error) *ExportError {
	return &ExportError{Format: format, Written: written, Cause: cause}
}
