//go:build !windows

package sweep

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

// mdnsServices lists the well-known service types queried each cycle.
var mdnsServices = []string{
	"_http._tcp",
	"_https._tcp",
	"_ssh._tcp",
	"_smb._tcp",
	"_ipp._tcp",
	"_printer._tcp",
	"_airplay._tcp",
	"_raop._tcp",
	"_googlecast._tcp",
	"_workstation._tcp",
}

// MDNSCache passively collects mDNS/Bonjour hostnames and serves them as a
// name hint during enrichment. Entries expire after two scan intervals.
type MDNSCache struct {
	logger   *zap.Logger
	interval time.Duration

	mu    sync.Mutex
	names map[string]mdnsEntry // IP -> hostname + last seen
}

type mdnsEntry struct {
	name string
	seen time.Time
}

var _ NameHint = (*MDNSCache)(nil)

// NewMDNSCache creates an MDNSCache querying every interval.
func NewMDNSCache(interval time.Duration, logger *zap.Logger) *MDNSCache {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MDNSCache{
		logger:   logger,
		interval: interval,
		names:    make(map[string]mdnsEntry),
	}
}

// HostName implements NameHint from the cache. It never queries inline;
// enrichment runs under tight per-address budgets.
func (c *MDNSCache) HostName(_ context.Context, addr string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.names[addr]
	if !ok || time.Since(entry.seen) > 2*c.interval {
		return ""
	}
	return entry.name
}

// Run starts the periodic query loop. It blocks until ctx is cancelled;
// the caller runs it in a goroutine.
func (c *MDNSCache) Run(ctx context.Context) {
	c.logger.Info("mDNS cache started",
		zap.Duration("interval", c.interval),
		zap.Int("service_count", len(mdnsServices)))

	c.queryAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("mDNS cache stopped")
			return
		case <-ticker.C:
			c.queryAll(ctx)
		}
	}
}

func (c *MDNSCache) queryAll(ctx context.Context) {
	var found int
	for _, svc := range mdnsServices {
		if ctx.Err() != nil {
			return
		}
		found += c.queryService(svc)
	}
	c.logger.Debug("mDNS scan complete", zap.Int("names_cached", found))
	c.expire()
}

func (c *MDNSCache) queryService(service string) int {
	entries := make(chan *mdns.ServiceEntry, 16)

	var found int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			if c.record(entry) {
				found++
			}
		}
	}()

	params := mdns.DefaultParams(service)
	params.Timeout = 3 * time.Second
	params.Entries = entries
	params.DisableIPv6 = true

	if err := mdns.Query(params); err != nil {
		c.logger.Debug("mDNS query failed",
			zap.String("service", service),
			zap.Error(err))
	}
	close(entries)
	wg.Wait()

	return found
}

// record caches the entry's hostname keyed by its IPv4 address.
func (c *MDNSCache) record(entry *mdns.ServiceEntry) bool {
	if entry == nil {
		return false
	}

	var ip string
	switch {
	case entry.AddrV4 != nil && !entry.AddrV4.IsUnspecified():
		ip = entry.AddrV4.String()
	case entry.Addr != nil && !entry.Addr.IsUnspecified():
		ip = entry.Addr.String()
	default:
		return false
	}

	name := strings.TrimSuffix(entry.Host, ".")
	name = strings.TrimSuffix(name, ".local")
	if name == "" {
		name = entry.Name
	}
	if name == "" {
		return false
	}

	c.mu.Lock()
	c.names[ip] = mdnsEntry{name: name, seen: time.Now()}
	c.mu.Unlock()
	return true
}

func (c *MDNSCache) expire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-2 * c.interval)
	for ip, entry := range c.names {
		if entry.seen.Before(cutoff) {
			delete(c.names, ip)
		}
	}
}
