//go:build !linux

package netenv

import "errors"

// errCountersUnsupported is returned on platforms without a counter source;
// the perf sampler degrades to its probe-based estimate.
var errCountersUnsupported = errors.New("interface counters not supported on this platform")

func (s *System) IOCounters() (sent, recv uint64, err error) {
	return 0, 0, errCountersUnsupported
}

func interfaceSpeed(string) int { return 0 }
