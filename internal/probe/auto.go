package probe

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Auto probes with a primary Prober and permanently switches to a fallback
// after the primary reports a capability error. Remote unreachability never
// triggers the switch.
type Auto struct {
	primary  Prober
	fallback Prober
	logger   *zap.Logger
	switched atomic.Bool
}

// Compile-time interface guard.
var _ Prober = (*Auto)(nil)

// NewAuto creates the default prober: pro-bing first, raw x/net ICMP as
// the fallback.
func NewAuto(timeout time.Duration, logger *zap.Logger) *Auto {
	return &Auto{
		primary:  NewPinger(timeout),
		fallback: NewRawPinger(timeout),
		logger:   logger,
	}
}

func (a *Auto) Probe(ctx context.Context, addr string) (Result, error) {
	if a.switched.Load() {
		return a.fallback.Probe(ctx, addr)
	}

	res, err := a.primary.Probe(ctx, addr)
	if err == nil {
		return res, nil
	}

	if a.switched.CompareAndSwap(false, true) {
		a.logger.Warn("primary prober unavailable, switching to raw ICMP",
			zap.Error(err))
	}
	return a.fallback.Probe(ctx, addr)
}
