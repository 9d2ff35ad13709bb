//go:build windows

package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// MDNSCache is a no-op stub on Windows where multicast DNS is not
// reliably supported.
type MDNSCache struct{}

var _ NameHint = (*MDNSCache)(nil)

// NewMDNSCache returns a no-op mDNS cache on Windows.
func NewMDNSCache(_ time.Duration, _ *zap.Logger) *MDNSCache {
	return &MDNSCache{}
}

// HostName always misses on Windows.
func (c *MDNSCache) HostName(_ context.Context, _ string) string {
	return ""
}

// Run is a no-op on Windows. It returns when ctx is cancelled.
func (c *MDNSCache) Run(ctx context.Context) {
	<-ctx.Done()
}
