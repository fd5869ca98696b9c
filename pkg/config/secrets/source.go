package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by a Source that has no value for a name.
var ErrNotFound = errors.New("secret not found")

// Source looks up secret values by name.
type Source interface {
	// Lookup returns the value of name, or an error wrapping ErrNotFound
	// when the source does not hold it.
	Lookup(ctx context.Context, name string) (string, error)

	// Name identifies the source in logs ("env", "file").
	Name() string
}

// EnvSource reads secrets from environment variables. The secret name is
// upper-cased, hyphens become underscores, and Prefix is prepended.
type EnvSource struct {
	Prefix string
}

// NewEnvSource creates an environment source.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix}
}

// Lookup implements Source.
func (s *EnvSource) Lookup(ctx context.Context, name string) (string, error) {
	v := os.Getenv(s.EnvVar(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s in environment", ErrNotFound, redactName(name))
	}
	return v, nil
}

// EnvVar returns the variable name consulted for a secret.
func (s *EnvSource) EnvVar(name string) string {
	return s.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Name implements Source.
func (s *EnvSource) Name() string { return "env" }

// FileSource reads secrets from files in a directory, as mounted by
// Kubernetes or Docker secrets. Files must be regular files with mode 0600
// or 0400; surrounding whitespace is trimmed.
type FileSource struct {
	dir string
}

// NewFileSource creates a source for dir, which must exist.
func NewFileSource(dir string) (*FileSource, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve secrets dir: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat secrets dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("secrets dir is not a directory: %s", dir)
	}
	return &FileSource{dir: abs}, nil
}

// Lookup implements Source.
func (s *FileSource) Lookup(ctx context.Context, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid secret name %q", redactName(name))
	}
	path := filepath.Join(s.dir, name)

	info, err := os.Lstat(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s in %s", ErrNotFound, redactName(name), s.dir)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat secret file: %w", err)
	}
	if !info.Mode().IsRegular() {
		// Kubernetes mounts secrets as symlinks into a timestamped dir.
		if info.Mode()&os.ModeSymlink == 0 {
			return "", fmt.Errorf("secret %s is not a regular file", redactName(name))
		}
		if info, err = os.Stat(path); err != nil || !info.Mode().IsRegular() {
			return "", fmt.Errorf("secret %s is not a regular file", redactName(name))
		}
	}
	if perm := info.Mode().Perm(); perm != 0o600 && perm != 0o400 {
		return "", fmt.Errorf("insecure permissions on secret %s: %o (want 0600 or 0400)", redactName(name), perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Name implements Source.
func (s *FileSource) Name() string { return "file" }

func redactName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
