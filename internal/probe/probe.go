// Package probe implements host liveness probing: a single ICMP echo with a
// short timeout. Remote failures (no reply, unreachable, filtered) are never
// errors; they collapse to an unreachable Result. Errors are reserved for
// local capability problems such as being unable to open an ICMP socket.
package probe

import (
	"context"
	"time"
)

// Default timing budget: one echo with a ~1s reply window, and a hard
// per-call ceiling so a wedged probe can never stall a sweep worker.
const (
	DefaultTimeout = 1 * time.Second
	DefaultCeiling = 3 * time.Second
)

// Result is the outcome of a single liveness probe.
type Result struct {
	Reachable bool
	RTT       time.Duration
}

// Prober issues one liveness probe to an address. Implementations must be
// safe for concurrent use against different addresses.
type Prober interface {
	Probe(ctx context.Context, addr string) (Result, error)
}

// unreachable is the zero result returned on any probe failure.
var unreachable = Result{}
