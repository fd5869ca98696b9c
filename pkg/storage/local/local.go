// Package local stores generated images on the local filesystem under a
// directory that a web server exposes publicly.
package local

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
)

// Config configures the local backend.
type Config struct {
	// Root is the public directory files are written under.
	Root string

	// URLPrefix is prepended to keys to form the returned URL (default "/").
	URLPrefix string

	// DirMode and FileMode default to 0755 and 0644.
	DirMode  fs.FileMode
	FileMode fs.FileMode
}

// Backend writes files atomically (temp file then rename).
type Backend struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a local backend. The root directory is created if missing.
func New(cfg Config) (*Backend, error) {
	if cfg.Root == "" {
		return nil, errors.New("local storage: root directory is required")
	}
	if cfg.DirMode == 0 {
		cfg.DirMode = 0o755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0o644
	}
	cfg.URLPrefix = strings.TrimRight(cfg.URLPrefix, "/")

	if err := os.MkdirAll(cfg.Root, cfg.DirMode); err != nil {
		return nil, &storage.StorageError{Backend: storage.BackendLocal, Operation: "init", Cause: err}
	}

	return &Backend{
		cfg:    cfg,
		logger: slog.Default().With("component", "storage.local"),
	}, nil
}

// Name returns storage.BackendLocal.
func (b *Backend) Name() string { return storage.BackendLocal }

// Write stores the bytes at <root>/<key> and returns <urlPrefix>/<key>.
func (b *Backend) Write(ctx context.Context, in *storage.WriteInput) *storage.WriteOutput {
	if err := ctx.Err(); err != nil {
		return storage.Failure(storage.BackendLocal, storage.CodeStorageError, "write cancelled")
	}

	path, ok := b.resolve(in.Key)
	if !ok {
		return storage.Failure(storage.BackendLocal, storage.CodeStorageWriteError, "invalid key")
	}

	if err := b.writeFileAtomic(path, in.Data); err != nil {
		b.logger.Warn("write failed", "key", in.Key, "error", err)
		if errors.Is(err, fs.ErrPermission) {
			return storage.Failure(storage.BackendLocal, storage.CodeStorageAuthError, "permission denied")
		}
		return storage.Failure(storage.BackendLocal, storage.CodeStorageWriteError, "write failed")
	}

	b.logger.Debug("image stored", "key", in.Key, "bytes", len(in.Data))
	return storage.Success(b.cfg.URLPrefix + "/" + in.Key)
}

// resolve maps a key to a path inside the root.
func (b *Backend) resolve(key string) (string, bool) {
	if key == "" || filepath.IsAbs(key) {
		return "", false
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(b.cfg.Root, clean), true
}

func (b *Backend) writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, b.cfg.DirMode); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(b.cfg.FileMode); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Close is a no-op.
func (b *Backend) Close() error { return nil }
