// Package storage defines the persistence boundary for generated images.
//
// A Backend writes raw image bytes under a deterministic key and reports a
// URL the caller can publish. Like providers, backends never return Go errors
// across the boundary: failures come back as a WriteOutput carrying one of the
// STORAGE_* codes and a message that is safe to show.
//
// Keys are derived from (requestId, platform, category, contentType) by Key,
// so a repeated write for the same request overwrites the earlier object.
//
// Implementations live in subpackages:
//   - local: files under a public directory, relative URLs
//   - s3: objects in an S3 bucket, absolute HTTPS URLs
//   - memory: in-process map for tests and dry runs
package storage
