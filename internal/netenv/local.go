package netenv

import (
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/models"
)

// fallbackLocalIP is reported when the outbound-dial trick fails entirely
// (e.g. no route to the internet and no usable interface).
var fallbackLocalIP = net.IPv4(192, 168, 1, 100)

// zeroMAC is reported when no interface MAC can be determined.
const zeroMAC = "00:00:00:00:00:00"

// LocalIP determines the primary outbound IPv4 address using a UDP
// connect-without-send: the kernel picks the source address for the route
// to a well-known public host, no packet is transmitted.
func (s *System) LocalIP() net.IP {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP.To4() != nil {
			return addr.IP.To4()
		}
	}

	// No default route; fall back to the first non-loopback interface address.
	for _, iface := range s.Interfaces() {
		if ip := net.ParseIP(iface.IP); ip != nil && ip.To4() != nil && !ip.IsLoopback() {
			return ip.To4()
		}
	}

	s.logger.Debug("local IP detection failed, using fallback",
		zap.String("fallback", fallbackLocalIP.String()))
	return fallbackLocalIP
}

// LocalMAC returns the MAC address of the interface that carries LocalIP.
func (s *System) LocalMAC() string {
	local := s.LocalIP()

	ifaces, err := net.Interfaces()
	if err != nil {
		return zeroMAC
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipnet.IP.Equal(local) {
				return strings.ToUpper(iface.HardwareAddr.String())
			}
		}
	}

	// No interface matched the outbound address; use the first one with
	// a hardware address.
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback == 0 && len(iface.HardwareAddr) > 0 {
			return strings.ToUpper(iface.HardwareAddr.String())
		}
	}
	return zeroMAC
}

// Interfaces lists the host's up IPv4 interfaces with their netmasks.
func (s *System) Interfaces() []models.NetworkInterface {
	out := []models.NetworkInterface{}

	ifaces, err := net.Interfaces()
	if err != nil {
		return out
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			out = append(out, models.NetworkInterface{
				Name:      iface.Name,
				IP:        ipnet.IP.To4().String(),
				Netmask:   net.IP(ipnet.Mask).String(),
				Up:        true,
				SpeedMbps: interfaceSpeed(iface.Name),
			})
		}
	}
	return out
}
