//go:build linux

package netenv

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IOCounters sums bytes sent/received across all non-loopback interfaces
// by reading /proc/net/dev.
func (s *System) IOCounters() (sent, recv uint64, err error) {
	f, err := os.Open("/proc/net/dev")
	if err != nil {
		return 0, 0, fmt.Errorf("open /proc/net/dev: %w", err)
	}
	defer f.Close()

	tx, rx, perr := parseProcNetDev(f)
	if perr != nil {
		return 0, 0, perr
	}
	return tx, rx, nil
}

// parseProcNetDev reads /proc/net/dev content. Format per interface line:
//
//	iface: rx_bytes rx_packets ... (8 fields) tx_bytes tx_packets ...
func parseProcNetDev(r interface{ Read([]byte) (int, error) }) (tx, rx uint64, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.Index(line, ":")
		if colon < 0 {
			continue // header lines
		}
		name := strings.TrimSpace(line[:colon])
		if name == "lo" {
			continue
		}
		fields := strings.Fields(line[colon+1:])
		if len(fields) < 16 {
			continue
		}
		rxBytes, err1 := strconv.ParseUint(fields[0], 10, 64)
		txBytes, err2 := strconv.ParseUint(fields[8], 10, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		rx += rxBytes
		tx += txBytes
	}
	return tx, rx, scanner.Err()
}

// interfaceSpeed reads the link speed in Mbps from sysfs. Returns 0 when
// unavailable (virtual interfaces, wifi without ethtool support).
func interfaceSpeed(name string) int {
	data, err := os.ReadFile("/sys/class/net/" + name + "/speed")
	if err != nil {
		return 0
	}
	speed, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || speed < 0 {
		return 0
	}
	return speed
}
