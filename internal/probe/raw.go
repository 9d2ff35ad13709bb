package probe

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// rawSeq hands out distinct sequence numbers across concurrent probes.
var rawSeq atomic.Uint32

// RawPinger probes targets with a hand-built ICMP echo over x/net/icmp.
// It exists for environments where pro-bing's socket strategy fails; each
// probe opens its own socket, so concurrent use needs no coordination.
type RawPinger struct {
	timeout time.Duration
}

// Compile-time interface guard.
var _ Prober = (*RawPinger)(nil)

// NewRawPinger creates a RawPinger with the given reply timeout.
func NewRawPinger(timeout time.Duration) *RawPinger {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RawPinger{timeout: timeout}
}

// Probe sends one echo request and waits for the matching reply.
func (p *RawPinger) Probe(ctx context.Context, addr string) (Result, error) {
	target := net.ParseIP(addr)
	if target == nil || target.To4() == nil {
		return unreachable, fmt.Errorf("probe %q: not an IPv4 address", addr)
	}
	target = target.To4()

	conn, network, err := openEchoConn()
	if err != nil {
		return unreachable, fmt.Errorf("open ICMP socket: %w", err)
	}
	defer conn.Close()

	id := os.Getpid() & 0xffff
	seq := int(rawSeq.Add(1) & 0xffff)

	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("lanscope-probe"),
		},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return unreachable, fmt.Errorf("marshal echo: %w", err)
	}

	var dst net.Addr
	if network == "udp4" {
		dst = &net.UDPAddr{IP: target}
	} else {
		dst = &net.IPAddr{IP: target}
	}

	sendTime := time.Now()
	if _, err := conn.WriteTo(msgBytes, dst); err != nil {
		// Send failures on a working socket mean the host is unreachable.
		return unreachable, nil
	}

	deadline := sendTime.Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return unreachable, fmt.Errorf("set read deadline: %w", err)
	}

	buf := make([]byte, 1500)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			// Timeout or cancellation.
			return unreachable, nil
		}

		reply, err := icmp.ParseMessage(1, buf[:n])
		if err != nil {
			continue
		}
		if reply.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := reply.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue // Another probe's reply.
		}
		// Unprivileged udp4 sockets rewrite the ID, so match on Seq only.
		return Result{Reachable: true, RTT: time.Since(sendTime)}, nil
	}
}

// openEchoConn opens an ICMP connection suitable for the current platform.
// On Linux/macOS it tries unprivileged ping sockets first, then raw ICMP.
func openEchoConn() (*icmp.PacketConn, string, error) {
	if runtime.GOOS == "windows" {
		conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
		return conn, "ip4:icmp", err
	}

	conn, err := icmp.ListenPacket("udp4", "")
	if err == nil {
		return conn, "udp4", nil
	}

	conn, err = icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	return conn, "ip4:icmp", err
}
