package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Output codes.
const (
	CodeStorageError      = "STORAGE_ERROR"
	CodeStorageWriteError = "STORAGE_WRITE_ERROR"
	CodeStorageAuthError  = "STORAGE_AUTH_ERROR"
)

// Backend names.
const (
	BackendLocal  = "local"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Backend persists generated images.
type Backend interface {
	// Name returns the backend name (local, s3, memory).
	Name() string

	// Write stores the bytes under in.Key. It never panics on I/O failure.
	Write(ctx context.Context, in *WriteInput) *WriteOutput

	// Close releases resources held by the backend.
	Close() error
}

// WriteInput carries the bytes to persist.
type WriteInput struct {
	Key         string
	Data        []byte
	ContentType string
}

// WriteOutput is the result of a write.
type WriteOutput struct {
	OK               bool
	URL              string
	ErrorCode        string
	ErrorMessageSafe string
}

// Success builds a successful output.
func Success(url string) *WriteOutput {
	return &WriteOutput{OK: true, URL: url}
}

// Failure builds a failed output. The message is prefixed with the backend
// name and must not contain paths, credentials or object contents.
func Failure(backend, code, message string) *WriteOutput {
	return &WriteOutput{
		ErrorCode:        code,
		ErrorMessageSafe: fmt.Sprintf("%s: %s", backend, message),
	}
}

var (
	unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

	// hashedSuffix matches the suffix KeyID appends.
	hashedSuffix = regexp.MustCompile(`-[0-9a-f]{12}$`)
)

const (
	// maxIDLength caps the request id part of a key.
	maxIDLength = 96

	// idHashLength is the number of hex digits of the id digest kept in a
	// key.
	idHashLength = 12
)

// SanitizeID reduces a request id to characters that are safe in a path or
// object key. An id that sanitizes to nothing becomes "request".
//
// SanitizeID is lossy: "order/42" and "order-42" both become "order-42".
// Use KeyID where distinct ids must stay distinct.
func SanitizeID(id string) string {
	s := unsafeKeyChars.ReplaceAllString(id, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxIDLength {
		s = strings.TrimRight(s[:maxIDLength], "-")
	}
	if s == "" {
		return "request"
	}
	return s
}

// KeyID is the request id part of a storage key. Ids that are already
// safe are kept as they are. Any other id is sanitized and suffixed with
// the first 12 hex digits of the SHA-256 of the raw id, so two different
// ids never share a key. A safe id that happens to end like such a suffix
// is hashed too.
func KeyID(id string) string {
	s := SanitizeID(id)
	if s == id && !hashedSuffix.MatchString(s) {
		return s
	}
	sum := sha256.Sum256([]byte(id))
	return s + "-" + hex.EncodeToString(sum[:])[:idHashLength]
}

// Extension maps a MIME type to a file extension.
func Extension(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	switch ct {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "bin"
	}
}

// Key derives the storage key for a generated image:
// generated/<platform>/<category>/<KeyID(requestId)>.<ext>.
func Key(requestID, platform, category, contentType string) string {
	return fmt.Sprintf("generated/%s/%s/%s.%s",
		SanitizeID(platform), SanitizeID(category), KeyID(requestID), Extension(contentType))
}

// StorageError describes an infrastructure failure inside a backend. It is
// logged, never returned to callers of Write.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
