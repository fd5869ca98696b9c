package health

import (
	"context"
	"fmt"

	"github.com/acemetillidie0001/obd-premium-apps-sub006/pkg/providers"
)

// ProviderCheck fails while the provider's tracked health is unhealthy.
func ProviderCheck(p providers.Provider) CheckFunc {
	return func(ctx context.Context) error {
		if p.IsHealthy() {
			return nil
		}
		h := p.GetHealth()
		return fmt.Errorf("provider %s unhealthy after %d consecutive failures", p.GetName(), h.ConsecutiveFailures)
	}
}

// Pinger is implemented by stores that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck wraps a Pinger.
func PingCheck(p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		return p.Ping(ctx)
	}
}
