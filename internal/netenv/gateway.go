package netenv

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"runtime"
	"strings"
)

// DefaultGateway reads the default route's gateway from the OS route table.
// Callers fall back to <prefix>.1 when this fails.
func (s *System) DefaultGateway(ctx context.Context) (net.IP, error) {
	output, err := routeTableOutput(ctx)
	if err != nil {
		return nil, fmt.Errorf("read route table: %w", err)
	}

	gw := ParseGatewayOutput(output, runtime.GOOS)
	if gw == nil {
		return nil, fmt.Errorf("no default gateway in route table")
	}
	return gw, nil
}

// routeTableOutput runs the platform's route inspection command.
func routeTableOutput(ctx context.Context) (string, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.CommandContext(ctx, "route", "print", "0.0.0.0")
	case "darwin":
		cmd = exec.CommandContext(ctx, "route", "-n", "get", "default")
	default:
		cmd = exec.CommandContext(ctx, "ip", "route", "show", "default")
	}
	out, err := cmd.Output()
	return string(out), err
}

// ParseGatewayOutput extracts the default gateway address from route command
// output for the given platform. Returns nil when no gateway is present.
func ParseGatewayOutput(output, platform string) net.IP {
	switch platform {
	case "windows":
		// Persistent/active route rows: "0.0.0.0  0.0.0.0  <gateway>  <iface>  <metric>"
		for _, line := range strings.Split(output, "\n") {
			if !strings.Contains(line, "0.0.0.0") || strings.Contains(line, "On-link") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				if ip := net.ParseIP(fields[2]); ip != nil && ip.To4() != nil && !ip.IsUnspecified() {
					return ip.To4()
				}
			}
		}
	case "darwin":
		// "    gateway: 192.168.1.1"
		for _, line := range strings.Split(output, "\n") {
			fields := strings.Fields(line)
			if len(fields) == 2 && fields[0] == "gateway:" {
				if ip := net.ParseIP(fields[1]); ip != nil && ip.To4() != nil {
					return ip.To4()
				}
			}
		}
	default:
		// "default via 192.168.1.1 dev eth0 ..."
		for _, line := range strings.Split(output, "\n") {
			if !strings.Contains(line, "default via") {
				continue
			}
			fields := strings.Fields(line)
			if len(fields) >= 3 {
				if ip := net.ParseIP(fields[2]); ip != nil && ip.To4() != nil {
					return ip.To4()
				}
			}
		}
	}
	return nil
}
