package sweep

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/probe"
	"github.com/lanscope/lanscope/pkg/models"
)

// NameResolver performs reverse DNS lookups. *net.Resolver satisfies it.
type NameResolver interface {
	LookupAddr(ctx context.Context, addr string) ([]string, error)
}

// NameHint is a best-effort secondary hostname source (SNMP, mDNS cache)
// consulted when reverse DNS fails. Implementations return "" on any failure.
type NameHint interface {
	HostName(ctx context.Context, addr string) string
}

// classRule maps hostname substrings (and the gateway octet) to a device
// type and its baseline signal. First match wins, so order matters: the
// router rule must shadow e.g. a NAS named "router-backup".
type classRule struct {
	dtype    models.DeviceType
	signal   int
	keywords []string
}

var classRules = []classRule{
	{models.DeviceTypeRouter, 100, []string{"router", "gateway"}},
	{models.DeviceTypeServer, 95, []string{"server", "nas"}},
	{models.DeviceTypePrinter, 80, []string{"printer", "print"}},
	{models.DeviceTypePhone, 75, []string{"phone", "mobile"}},
	{models.DeviceTypeLaptop, 85, []string{"laptop", "note"}},
}

// Enricher turns a reachable address into a full Device record. Every step
// is independently fault-tolerant; Enrich never fails outward.
type Enricher struct {
	prober        probe.Prober
	resolver      NameResolver
	hints         []NameHint
	lookupTimeout time.Duration
	logger        *zap.Logger
}

// NewEnricher creates an Enricher. resolver may be nil to skip reverse DNS;
// hints are optional.
func NewEnricher(prober probe.Prober, resolver NameResolver, hints []NameHint, logger *zap.Logger) *Enricher {
	return &Enricher{
		prober:        prober,
		resolver:      resolver,
		hints:         hints,
		lookupTimeout: 500 * time.Millisecond,
		logger:        logger,
	}
}

// Enrich builds the Device record for an address already proven reachable.
// neighbors is the sweep-wide neighbor table snapshot (may be nil).
func (e *Enricher) Enrich(ctx context.Context, addr string, neighbors map[string]string) models.Device {
	octet := lastOctet(addr)

	device := models.Device{
		ID:     octet,
		Name:   fmt.Sprintf("Device-%d", octet),
		IP:     addr,
		MAC:    models.MACUnknown,
		Type:   models.DeviceTypeUnknown,
		Status: models.DeviceStatusOnline,
	}

	if name := e.resolveName(ctx, addr); name != "" {
		device.Name = name
	}

	device.Type, device.Signal = classify(octet, device.Name)

	if mac, ok := neighbors[addr]; ok {
		device.MAC = mac
	}

	device.Signal = e.adjustSignal(ctx, addr, device.Signal)
	device.Signal = models.ClampSignal(device.Signal)

	return device
}

// resolveName tries reverse DNS, then each name hint in order.
func (e *Enricher) resolveName(ctx context.Context, addr string) string {
	if e.resolver != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, e.lookupTimeout)
		names, err := e.resolver.LookupAddr(lookupCtx, addr)
		cancel()
		if err == nil && len(names) > 0 {
			return strings.TrimSuffix(names[0], ".")
		}
	}

	for _, h := range e.hints {
		if name := h.HostName(ctx, addr); name != "" {
			return name
		}
	}
	return ""
}

// adjustSignal refines the baseline signal with a secondary timed probe.
// A reply under 10ms bumps the signal, under 50ms floors it at 60, and
// anything slower (including a failed probe) degrades it toward 30.
func (e *Enricher) adjustSignal(ctx context.Context, addr string, base int) int {
	start := time.Now()
	res, err := e.prober.Probe(ctx, addr)
	elapsed := time.Since(start)

	rtt := elapsed
	if err == nil && res.Reachable && res.RTT > 0 {
		rtt = res.RTT
	}

	switch {
	case rtt < 10*time.Millisecond:
		return min(100, base+10)
	case rtt < 50*time.Millisecond:
		return max(60, base)
	default:
		return max(30, base-20)
	}
}

// classify applies the ordered rule table to the last octet and hostname.
func classify(octet int, name string) (models.DeviceType, int) {
	lower := strings.ToLower(name)

	for i, rule := range classRules {
		// The gateway octet classifies as router even with no matching name.
		if i == 0 && octet == 1 {
			return rule.dtype, rule.signal
		}
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.dtype, rule.signal
			}
		}
	}
	return models.DeviceTypeDesktop, 90
}

// lastOctet extracts the final octet of a dotted-quad address.
func lastOctet(addr string) int {
	idx := strings.LastIndex(addr, ".")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return 0
	}
	return n
}
