// Package memory implements an in-process image store.
package memory

import (
	"context"
	"sync"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
)

// Object is a stored image.
type Object struct {
	Data        []byte
	ContentType string
}

// Backend keeps objects in a map. It is intended for tests and dry runs.
type Backend struct {
	urlPrefix string
	failCode  string

	mu      sync.RWMutex
	objects map[string]Object
	writes  int
}

// New creates a memory backend. URLs are "<urlPrefix>/<key>".
func New(urlPrefix string) *Backend {
	if urlPrefix == "" {
		urlPrefix = "memory://images"
	}
	return &Backend{urlPrefix: urlPrefix, objects: make(map[string]Object)}
}

// FailWith makes every later write fail with code.
func (b *Backend) FailWith(code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failCode = code
}

// Name returns storage.BackendMemory.
func (b *Backend) Name() string { return storage.BackendMemory }

// Write stores a copy of the bytes.
func (b *Backend) Write(ctx context.Context, in *storage.WriteInput) *storage.WriteOutput {
	if err := ctx.Err(); err != nil {
		return storage.Failure(storage.BackendMemory, storage.CodeStorageError, "write cancelled")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.writes++
	if b.failCode != "" {
		return storage.Failure(storage.BackendMemory, b.failCode, "configured failure")
	}

	data := make([]byte, len(in.Data))
	copy(data, in.Data)
	b.objects[in.Key] = Object{Data: data, ContentType: in.ContentType}

	return storage.Success(b.urlPrefix + "/" + in.Key)
}

// Get returns a stored object.
func (b *Backend) Get(key string) (Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	obj, ok := b.objects[key]
	return obj, ok
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// Writes returns the number of write attempts.
func (b *Backend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// Close is a no-op.
func (b *Backend) Close() error { return nil }
