package probe

import (
	"context"
	"fmt"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

// Pinger probes targets with a single ICMP echo via pro-bing.
type Pinger struct {
	timeout time.Duration
	ceiling time.Duration
}

// Compile-time interface guard.
var _ Prober = (*Pinger)(nil)

// NewPinger creates a Pinger with the given reply timeout. A zero timeout
// uses DefaultTimeout.
func NewPinger(timeout time.Duration) *Pinger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pinger{timeout: timeout, ceiling: DefaultCeiling}
}

// Probe sends one echo request and waits up to the timeout for a reply.
// The hard ceiling bounds the whole call even if pro-bing misbehaves.
func (p *Pinger) Probe(ctx context.Context, addr string) (Result, error) {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		return unreachable, fmt.Errorf("create pinger for %s: %w", addr, err)
	}

	pinger.Count = 1
	pinger.Timeout = p.timeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	ctx, cancel := context.WithTimeout(ctx, p.ceiling)
	defer cancel()

	// Run pinger in a goroutine for context cancellation.
	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case runErr := <-done:
		if runErr != nil {
			// Socket-level failures (permissions, no such device) are
			// capability errors the caller may want to react to.
			return unreachable, fmt.Errorf("ping %s: %w", addr, runErr)
		}
		stats := pinger.Statistics()
		if stats.PacketsRecv == 0 {
			return unreachable, nil
		}
		return Result{Reachable: true, RTT: stats.AvgRtt}, nil

	case <-ctx.Done():
		pinger.Stop()
		return unreachable, nil
	}
}
