// Package probe performs timeout-bounded TCP reachability probes. A probe
// opens a connection and closes it at once; no data is exchanged. It needs no
// raw sockets or elevated privileges.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
)

// DefaultTimeout is used when a probe is given no timeout.
const DefaultTimeout = 5 * time.Second

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from probes.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Prober checks whether a socket address accepts TCP connections.
type Prober interface {
	Probe(ctx context.Context, addr netip.AddrPort, timeout time.Duration) error
}

// DialContextFn matches net.Dialer.DialContext.
type DialContextFn func(ctx context.Context, network, address string) (net.Conn, error)

// TCP probes with a TCP connect.
type TCP struct {
	// DialContext defaults to a net.Dialer bounded by the probe timeout.
	DialContext DialContextFn
}

// NewTCP creates a TCP prober with defaults.
func NewTCP() *TCP {
	return &TCP{}
}

// Probe implements Prober. The returned error satisfies IsTimeout when the
// connect did not complete before the deadline.
func (p *TCP) Probe(ctx context.Context, addr netip.AddrPort, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dial := p.DialContext
	if dial == nil {
		d := net.Dialer{Timeout: timeout}
		dial = d.DialContext
	}

	start := time.Now()
	conn, err := dial(ctx, "tcp", addr.String())
	if err != nil {
		debugLog("%s: connect failed after %s: %v", addr, time.Since(start), err)
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	_ = conn.Close()

	debugLog("%s: connected in %.2fms", addr, float64(time.Since(start).Microseconds())/1000)
	return nil
}

// IsTimeout reports whether a Probe error is a deadline expiry rather than an
// active failure such as a refused connection.
func IsTimeout(err error) bool {
	return network.IsTimeout(err)
}
