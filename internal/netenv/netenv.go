// Package netenv is the platform capability layer: local address discovery,
// route-table and neighbor-table inspection, and interface counters. Core
// logic never shells out directly; it consumes the Env interface so tests
// can substitute fakes.
package netenv

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/models"
)

// Env exposes the host network environment to the sweep and perf modules.
// Implementations must be safe for concurrent use.
type Env interface {
	// LocalIP returns the host's primary outbound IPv4 address.
	LocalIP() net.IP

	// LocalMAC returns the MAC address of the interface carrying LocalIP,
	// or "00:00:00:00:00:00" when it cannot be determined.
	LocalMAC() string

	// DefaultGateway returns the default route's gateway address.
	DefaultGateway(ctx context.Context) (net.IP, error)

	// Interfaces lists the host's up IPv4 interfaces.
	Interfaces() []models.NetworkInterface

	// IOCounters returns cumulative bytes sent and received across all
	// non-loopback interfaces.
	IOCounters() (sent, recv uint64, err error)

	// Neighbors reads the OS neighbor (ARP) table as an IP-to-MAC map.
	// MACs are normalized to upper-case colon-separated form.
	Neighbors(ctx context.Context) (map[string]string, error)
}

// System is the real-host Env implementation.
type System struct {
	logger *zap.Logger
}

// Compile-time interface guard.
var _ Env = (*System)(nil)

// New creates a System environment.
func New(logger *zap.Logger) *System {
	return &System{logger: logger}
}

// Prefix24 returns the first three octets of an IPv4 address joined by dots
// (e.g. "192.168.1"). Returns "" for non-IPv4 input.
func Prefix24(ip net.IP) string {
	v4 := ip.To4()
	if v4 == nil {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", v4[0], v4[1], v4[2])
}
