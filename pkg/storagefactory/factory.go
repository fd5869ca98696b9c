// Package storagefactory builds the configured storage backend.
package storagefactory

import (
	"context"
	"fmt"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage/local"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage/memory"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/storage/s3"
)

// New returns the backend named by cfg.Backend. timeout is used for S3
// uploads when cfg.S3.Timeout is unset. The backend is chosen once from
// configuration; requests never select storage.
func New(ctx context.Context, cfg config.StorageConfig, timeout time.Duration) (storage.Backend, error) {
	switch cfg.Backend {
	case storage.BackendLocal, "":
		root := cfg.Local.Root
		if root == "" {
			root = config.DefaultLocalRoot
		}
		return local.New(local.Config{
			Root:      root,
			URLPrefix: cfg.Local.URLPrefix,
		})

	case storage.BackendS3:
		s3Timeout := cfg.S3.Timeout
		if s3Timeout == 0 {
			s3Timeout = timeout
		}
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			CacheControl:    cfg.S3.CacheControl,
			Timeout:         s3Timeout,
		})

	case storage.BackendMemory:
		return memory.New(cfg.Memory.URLPrefix), nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q (valid: local, s3, memory)", cfg.Backend)
	}
}
