package netdiag

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/arp"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/hwaddr"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/ntp"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/oui"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/probe"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/resolve"
)

// VendorLookup resolves the manufacturer of a hardware address.
type VendorLookup interface {
	Lookup(mac net.HardwareAddr) (*oui.VendorInfo, error)
}

// Options configures a Client. Nil collaborators are replaced by the
// operating system backed defaults.
type Options struct {
	Resolver   resolve.Resolver
	Prober     probe.Prober
	Interfaces hwaddr.Source
	Clock      ntp.Querier
	Vendors    VendorLookup
	Neighbors  arp.Pinger

	// Timeout is used when an operation is given a zero timeout, and bounds
	// hostname resolution.
	Timeout time.Duration
	// TimeServer is queried by TimeRequest when no server is given.
	TimeServer string
}

// Client runs diagnostics. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	opts Options
}

// New creates a Client, filling unset options with defaults.
func New(opts Options) *Client {
	if opts.Resolver == nil {
		opts.Resolver = resolve.NewSystem()
	}
	if opts.Prober == nil {
		opts.Prober = probe.NewTCP()
	}
	if opts.Interfaces == nil {
		opts.Interfaces = hwaddr.System
	}
	if opts.Clock == nil {
		opts.Clock = ntp.NewClient()
	}
	if opts.Vendors == nil {
		opts.Vendors = oui.Open("")
	}
	if opts.Neighbors == nil {
		opts.Neighbors = arp.NewDiscovery()
	}
	if opts.Timeout <= 0 || opts.Timeout > MaxTimeout {
		opts.Timeout = DefaultTimeout
	}
	if opts.TimeServer == "" {
		opts.TimeServer = DefaultTimeServer
	}
	return &Client{opts: opts}
}

// Timeout returns the timeout applied when an operation is given none.
func (c *Client) Timeout() time.Duration {
	return c.opts.Timeout
}

// TimeServer returns the server TimeRequest queries by default.
func (c *Client) TimeServer() string {
	return c.opts.TimeServer
}

func (c *Client) timeout(op Operation, d time.Duration) (time.Duration, error) {
	switch {
	case d < 0:
		return 0, invalidArgument(op, "negative timeout %s", d)
	case d == 0:
		return c.opts.Timeout, nil
	case d > MaxTimeout:
		return 0, invalidArgument(op, "timeout %s exceeds %s", d, MaxTimeout)
	}
	return d, nil
}

// LookupHost resolves hostname and returns one address. With preferIPv4 the
// first IPv4 candidate is returned, otherwise the best candidate of any
// family. A resolution that completes without a matching candidate is
// KindNotFound; a failed resolution is KindFailed.
func (c *Client) LookupHost(ctx context.Context, hostname string, preferIPv4 bool) (netip.Addr, error) {
	if hostname == "" {
		return netip.Addr{}, invalidArgument(OpLookupHost, "empty hostname")
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	addrs, err := c.opts.Resolver.LookupNetIP(ctx, hostname)
	if err != nil {
		return netip.Addr{}, newError(OpLookupHost, KindFailed, err)
	}
	debugLogVerbose(OpLookupHost, "%s: %d candidates %v (prefer IPv4: %v)", hostname, len(addrs), addrs, preferIPv4)

	addr, err := resolve.SelectAddress(addrs, preferIPv4)
	if err != nil {
		return netip.Addr{}, newError(OpLookupHost, KindNotFound, fmt.Errorf("%s: %w", hostname, err))
	}
	debugLog(OpLookupHost, "%s -> %s", hostname, addr)
	return addr, nil
}

// ConnectionHealth attempts a TCP connect to the IP address literal and port
// within timeout (zero means the client default). No name resolution is
// performed. The connection is closed as soon as it is established.
func (c *Client) ConnectionHealth(ctx context.Context, address string, port uint16, timeout time.Duration) error {
	ap, err := network.ParseSocketAddr(address, port)
	if err != nil {
		return newError(OpConnectionHealth, KindInvalidArgument, fmt.Errorf("%q port %d: %w", address, port, err))
	}
	timeout, err = c.timeout(OpConnectionHealth, timeout)
	if err != nil {
		return err
	}

	if err := c.opts.Prober.Probe(ctx, ap, timeout); err != nil {
		if probe.IsTimeout(err) {
			return newError(OpConnectionHealth, KindTimedOut, err)
		}
		return newError(OpConnectionHealth, KindFailed, err)
	}
	debugLog(OpConnectionHealth, "%s reachable", ap)
	return nil
}

// MACAddress returns the hardware address of the first active interface as
// uppercase colon-separated hex.
func (c *Client) MACAddress() (string, error) {
	hw, err := c.hardwareAddr(OpMACAddress)
	if err != nil {
		return "", err
	}
	return hwaddr.Format(hw), nil
}

func (c *Client) hardwareAddr(op Operation) (net.HardwareAddr, error) {
	hw, err := hwaddr.Lookup(c.opts.Interfaces)
	if err != nil {
		if errors.Is(err, hwaddr.ErrNoInterface) {
			return nil, newError(op, KindNotFound, err)
		}
		return nil, newError(op, KindFailed, err)
	}
	debugLogVerbose(op, "local hardware address %s", hw)
	return hw, nil
}

// TimeRequest queries server, or the client's default time server when server
// is empty, and returns the server's time. A zero timeout means the client
// default.
func (c *Client) TimeRequest(ctx context.Context, server string, timeout time.Duration) (time.Time, error) {
	if server == "" {
		server = c.opts.TimeServer
	}
	return c.queryTime(ctx, OpTimeRequest, server, timeout)
}

// NTPRequest queries pool on an explicit port with the client default timeout.
func (c *Client) NTPRequest(ctx context.Context, pool string, port uint16) (time.Time, error) {
	if pool == "" {
		return time.Time{}, invalidArgument(OpNTPRequest, "empty pool")
	}
	if port == 0 {
		return time.Time{}, invalidArgument(OpNTPRequest, "port 0")
	}
	pool = strings.TrimSuffix(strings.TrimPrefix(pool, "["), "]")
	return c.queryTime(ctx, OpNTPRequest, network.JoinServer(pool, port), 0)
}

func (c *Client) queryTime(ctx context.Context, op Operation, server string, timeout time.Duration) (time.Time, error) {
	if _, _, err := network.SplitServer(server, ntp.DefaultPort); err != nil {
		return time.Time{}, newError(op, KindInvalidArgument, fmt.Errorf("server %q: %w", server, err))
	}
	timeout, err := c.timeout(op, timeout)
	if err != nil {
		return time.Time{}, err
	}

	now, err := c.opts.Clock.Query(ctx, server, timeout)
	if err != nil {
		switch {
		case errors.Is(err, ntp.ErrInvalidServer):
			return time.Time{}, newError(op, KindInvalidArgument, err)
		case network.IsTimeout(err):
			return time.Time{}, newError(op, KindTimedOut, err)
		default:
			return time.Time{}, newError(op, KindFailed, err)
		}
	}
	debugLog(op, "%s -> %d", server, now.Unix())
	return now, nil
}

// MACVendor returns the manufacturer registered for the OUI prefix of the
// local hardware address.
func (c *Client) MACVendor() (*oui.VendorInfo, error) {
	hw, err := c.hardwareAddr(OpMACVendor)
	if err != nil {
		return nil, err
	}

	vendor, err := c.opts.Vendors.Lookup(hw)
	if err != nil {
		if errors.Is(err, oui.ErrVendorNotFound) {
			return nil, newError(OpMACVendor, KindNotFound, err)
		}
		return nil, newError(OpMACVendor, KindFailed, err)
	}
	return vendor, nil
}

// NeighborMAC returns the hardware address answering ARP for the IPv4
// address literal, as uppercase colon-separated hex.
func (c *Client) NeighborMAC(ctx context.Context, address string, timeout time.Duration) (string, error) {
	ip, err := network.ParseIP(address)
	if err != nil {
		return "", newError(OpNeighborMAC, KindInvalidArgument, err)
	}
	if !ip.Unmap().Is4() {
		return "", newError(OpNeighborMAC, KindInvalidArgument, arp.ErrIPv6NotSupported)
	}
	timeout, err = c.timeout(OpNeighborMAC, timeout)
	if err != nil {
		return "", err
	}

	hw, err := c.opts.Neighbors.PingMAC(ctx, ip.Unmap(), timeout)
	if err != nil {
		if arp.IsTimeout(err) {
			return "", newError(OpNeighborMAC, KindTimedOut, err)
		}
		return "", newError(OpNeighborMAC, KindFailed, err)
	}
	return hwaddr.Format(hw), nil
}
