package storage

import (
	"context"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/config"
)

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.AuditConfig) (audit.Store, error) {
	if cfg.Driver == DriverMemory {
		return NewMemoryStore(), nil
	}
	return NewSQLStore(ctx, SQLConfig{
		Driver:       cfg.Driver,
		DSN:          cfg.DSN,
		MaxOpenConns: cfg.MaxOpenConns,
	})
}
