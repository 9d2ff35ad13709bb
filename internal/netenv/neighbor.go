package netenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
)

// macPattern matches a colon- or hyphen-delimited 6-octet hardware address.
var macPattern = regexp.MustCompile(`([0-9a-fA-F]{2}[:-]){5}[0-9a-fA-F]{2}`)

// filteredMACs are neighbor entries that carry no device identity.
var filteredMACs = map[string]bool{
	"00:00:00:00:00:00": true,
	"FF:FF:FF:FF:FF:FF": true,
}

// Neighbors reads the OS neighbor table and returns an IP-to-MAC map with
// MACs normalized to upper-case colon form. Linux reads /proc/net/arp
// directly and shells out to arp only when procfs is unavailable.
func (s *System) Neighbors(ctx context.Context) (map[string]string, error) {
	if runtime.GOOS == "linux" {
		if raw, err := os.ReadFile("/proc/net/arp"); err == nil {
			return ParseNeighborOutput(string(raw), "linux"), nil
		}
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows", "darwin":
		cmd = exec.CommandContext(ctx, "arp", "-a")
	default:
		cmd = exec.CommandContext(ctx, "arp", "-n")
	}

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("read neighbor table: %w", err)
	}
	return ParseNeighborOutput(string(out), runtime.GOOS), nil
}

// ParseNeighborOutput parses arp command output for the given platform.
// Incomplete entries (zero MAC) and the broadcast address are skipped.
func ParseNeighborOutput(output, platform string) map[string]string {
	table := make(map[string]string)

	switch platform {
	case "linux":
		// Column positions differ between /proc/net/arp
		//   "192.168.1.1   0x1   0x2   aa:bb:cc:dd:ee:ff   *   eth0"
		// and net-tools arp -n
		//   "192.168.1.1   ether   aa:bb:cc:dd:ee:ff   C   eth0"
		// so the MAC is located by pattern rather than by index.
		for _, line := range strings.Split(output, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			addEntry(table, fields[0], macPattern.FindString(line))
		}
	case "windows":
		// "  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic"
		for _, line := range strings.Split(output, "\n") {
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			ip, mac := fields[0], fields[1]
			addEntry(table, ip, mac)
		}
	case "darwin":
		// "? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]"
		for _, line := range strings.Split(output, "\n") {
			start := strings.Index(line, "(")
			end := strings.Index(line, ")")
			if start < 0 || end <= start {
				continue
			}
			ip := line[start+1 : end]
			mac := macPattern.FindString(line[end:])
			addEntry(table, ip, mac)
		}
	}

	return table
}

// addEntry validates and normalizes one neighbor row into the table.
func addEntry(table map[string]string, ip, mac string) {
	if !macPattern.MatchString(mac) {
		return
	}
	normalized := NormalizeMAC(mac)
	if filteredMACs[normalized] {
		return
	}
	if parsed := strings.Count(ip, "."); parsed != 3 {
		return
	}
	table[ip] = normalized
}

// NormalizeMAC converts a MAC to upper-case colon-separated form.
func NormalizeMAC(mac string) string {
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
}
