// Package arp resolves the hardware address of an IPv4 neighbour with an ARP
// request. ARP can find hosts that do not answer TCP or ICMP.
// Note: On most systems, ARP requests require elevated privileges.
// Platform support: Linux and BSD only (not Windows).
package arp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"
)

// DefaultTimeout is the default timeout for ARP lookups.
const DefaultTimeout = 1 * time.Second

// Errors
var (
	// ErrNotSupported is returned when ARP is called on unsupported platforms.
	ErrNotSupported = errors.New("ARP lookups are not supported on this platform")
	// ErrIPv6NotSupported is returned when attempting ARP on an IPv6 address.
	ErrIPv6NotSupported = errors.New("ARP is not supported for IPv6 addresses")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from ARP operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Pinger returns the hardware address that answers for an IPv4 address.
type Pinger interface {
	PingMAC(ctx context.Context, ip netip.Addr, timeout time.Duration) (net.HardwareAddr, error)
}

func checkIPv4(ip netip.Addr) (net.IP, error) {
	if !ip.IsValid() {
		return nil, fmt.Errorf("invalid IP address")
	}
	ip = ip.Unmap()
	if !ip.Is4() {
		return nil, ErrIPv6NotSupported
	}
	return net.IP(ip.AsSlice()), nil
}
