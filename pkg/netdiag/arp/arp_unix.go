//go:build linux || darwin || freebsd || netbsd || openbsd

package arp

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/j-keck/arping"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
)

// arping keeps its timeout in a package variable, so set-then-ping must not
// interleave across goroutines.
var arpingMu sync.Mutex

// Discovery performs ARP lookups with github.com/j-keck/arping.
type Discovery struct {
	ping func(net.IP) (net.HardwareAddr, time.Duration, error)
}

// NewDiscovery creates a new ARP helper.
func NewDiscovery() *Discovery {
	return &Discovery{ping: arping.Ping}
}

// PingMAC implements Pinger. The returned error satisfies IsTimeout when the
// neighbour did not answer in time.
func (a *Discovery) PingMAC(ctx context.Context, ip netip.Addr, timeout time.Duration) (net.HardwareAddr, error) {
	dst, err := checkIPv4(ip)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	debugLog("Looking up ARP for %s", dst)

	type arpResponse struct {
		mac net.HardwareAddr
		dur time.Duration
		err error
	}
	responseChan := make(chan arpResponse, 1)

	go func() {
		arpingMu.Lock()
		defer arpingMu.Unlock()

		arping.SetTimeout(timeout)
		mac, dur, err := a.ping(dst)
		responseChan <- arpResponse{mac: mac, dur: dur, err: err}
	}()

	select {
	case <-ctx.Done():
		debugLog("%s: context done", dst)
		return nil, ctx.Err()
	case resp := <-responseChan:
		if resp.err != nil {
			debugLog("%s: error: %v", dst, resp.err)
			return nil, resp.err
		}
		debugLog("%s -> MAC: %s (%.2fms)", dst, resp.mac, float64(resp.dur.Microseconds())/1000)
		return resp.mac, nil
	}
}

// IsTimeout reports whether err means the neighbour did not answer in time.
func IsTimeout(err error) bool {
	return errors.Is(err, arping.ErrTimeout) || network.IsTimeout(err)
}

// IsSupported returns true if ARP is supported on this platform.
func IsSupported() bool {
	return true
}
