//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package arp

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
)

// Discovery is a stub on platforms without ARP support.
type Discovery struct{}

// NewDiscovery creates a new ARP helper.
func NewDiscovery() *Discovery {
	return &Discovery{}
}

// PingMAC always returns ErrNotSupported after validating ip.
func (a *Discovery) PingMAC(ctx context.Context, ip netip.Addr, timeout time.Duration) (net.HardwareAddr, error) {
	if _, err := checkIPv4(ip); err != nil {
		return nil, err
	}
	return nil, ErrNotSupported
}

// IsTimeout reports whether err means the neighbour did not answer in time.
func IsTimeout(err error) bool {
	return network.IsTimeout(err)
}

// IsSupported returns false on this platform.
func IsSupported() bool {
	return false
}
