package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

var refPattern = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

type cached struct {
	value     string
	expiresAt time.Time
}

// Resolver looks secrets up across sources in order and caches the
// values it finds.
type Resolver struct {
	sources []Source
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cached
}

// NewResolver creates a resolver. A zero ttl disables caching.
func NewResolver(ttl time.Duration, sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		ttl:     ttl,
		now:     time.Now,
		cache:   make(map[string]cached),
	}
}

// FromConfig builds the standard chain: the secrets dir when set, then the
// environment.
func FromConfig(cfg config.SecretsConfig) (*Resolver, error) {
	var sources []Source
	if cfg.Dir != "" {
		fs, err := NewFileSource(cfg.Dir)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fs)
	}
	sources = append(sources, NewEnvSource(cfg.EnvPrefix))
	return NewResolver(cfg.CacheTTL, sources...), nil
}

// Lookup returns the first value any source holds for name.
func (r *Resolver) Lookup(ctx context.Context, name string) (string, error) {
	if v, ok := r.cached(name); ok {
		return v, nil
	}

	var errs []error
	for _, src := range r.sources {
		v, err := src.Lookup(ctx, name)
		if err == nil {
			slog.Debug("secret resolved", "source", src.Name(), "name", redactName(name))
			r.store(name, v)
			return v, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, redactName(name))
}

// Expand replaces every ${secret:name} in s. Strings without references
// are returned unchanged.
func (r *Resolver) Expand(ctx context.Context, s string) (string, error) {
	var errs []error
	out := refPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := refPattern.FindStringSubmatch(ref)[1]
		v, err := r.Lookup(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return ref
		}
		return v
	})
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}

// Clear drops every cached value.
func (r *Resolver) Clear() {
	r.mu.Lock()
	r.cache = make(map[string]cached)
	r.mu.Unlock()
}

func (r *Resolver) cached(name string) (string, bool) {
	if r.ttl <= 0 {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cache[name]
	if !ok || r.now().After(c.expiresAt) {
		return "", false
	}
	return c.value, true
}

func (r *Resolver) store(name, value string) {
	if r.ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.cache[name] = cached{value: value, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
}

// ResolveConfig expands references in the credential fields of cfg in
// place: provider API keys, S3 access keys and the audit DSN. Every failing
// field is reported.
func ResolveConfig(ctx context.Context, cfg *config.Config, r *Resolver) error {
	var errs []error
	expand := func(field string, dst *string) {
		if *dst == "" {
			return
		}
		v, err := r.Expand(ctx, *dst)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
			return
		}
		*dst = v
	}

	for id, pc := range cfg.Providers {
		expand("providers."+id+".api_key", &pc.APIKey)
		cfg.Providers[id] = pc
	}
	expand("storage.s3.access_key_id", &cfg.Storage.S3.AccessKeyID)
	expand("storage.s3.secret_access_key", &cfg.Storage.S3.SecretAccessKey)
	expand("audit.dsn", &cfg.Audit.DSN)

	return errors.Join(errs...)
}
