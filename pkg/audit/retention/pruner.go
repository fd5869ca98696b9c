package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/audit"
)

// Config contains retention settings.
type Config struct {
	// RetentionDays keeps records this many days. 0 keeps them forever.
	RetentionDays int

	// Schedule is a standard cron expression, e.g. "0 3 * * *".
	Schedule string
}

// Pruner deletes audit records older than the retention period.
type Pruner struct {
	store  audit.Store
	config Config
	now    func() time.Time
	logger *slog.Logger
}

// NewPruner creates a pruner for store.
func NewPruner(store audit.Store, config Config) *Pruner {
	return &Pruner{
		store:  store,
		config: config,
		now:    time.Now,
		logger: slog.Default().With("component", "audit.retention"),
	}
}

// Cutoff returns the instant before which records are pruned, and false
// when retention is disabled.
func (p *Pruner) Cutoff() (time.Time, bool) {
	if p.config.RetentionDays <= 0 {
		return time.Time{}, false
	}
	return p.now().AddDate(0, 0, -p.config.RetentionDays), true
}

// Prune deletes old jobs and events and returns how many rows went.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	cutoff, ok := p.Cutoff()
	if !ok {
		p.logger.Debug("retention disabled, nothing pruned")
		return 0, nil
	}

	deleted, err := p.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, &audit.RetentionError{RetentionDays: p.config.RetentionDays, Cause: err}
	}

	if deleted > 0 {
		p.logger.Info("audit records pruned",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
			"cutoff", cutoff,
		)
	}
	return deleted, nil
}
