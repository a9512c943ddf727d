// Package resolve turns hostnames into ordered candidate addresses and picks
// one of them according to an address family preference.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// DefaultTimeout is the default timeout for a resolution.
const DefaultTimeout = 5 * time.Second

// ErrNoAddress is returned when no candidate satisfies the preference, or when
// the resolution produced no addresses at all.
var ErrNoAddress = errors.New("no address found")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from resolution.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Resolver produces the candidate addresses for a host, best first.
type Resolver interface {
	LookupNetIP(ctx context.Context, host string) ([]netip.Addr, error)
}

// System resolves through the operating system's resolver configuration and
// orders the result by RFC 6724 destination address selection.
type System struct {
	// Resolver defaults to net.DefaultResolver.
	Resolver *net.Resolver
	// Dial is used to discover source addresses. Defaults to net.Dial.
	Dial func(network, address string) (net.Conn, error)
}

// NewSystem creates a system resolver with defaults.
func NewSystem() *System {
	return &System{Resolver: net.DefaultResolver, Dial: net.Dial}
}

// LookupNetIP implements Resolver.
func (s *System) LookupNetIP(ctx context.Context, host string) ([]netip.Addr, error) {
	name, err := NormalizeHost(host)
	if err != nil {
		return nil, err
	}

	r := s.Resolver
	if r == nil {
		r = net.DefaultResolver
	}
	addrs, err := r.LookupNetIP(ctx, "ip", name)
	if err != nil {
		debugLog("%s: lookup failed: %v", name, err)
		return nil, err
	}
	for i := range addrs {
		addrs[i] = addrs[i].Unmap()
	}

	SortByRFC6724(addrs, SourceAddrs(s.Dial, addrs))
	debugLog("%s -> %v", name, addrs)
	return addrs, nil
}

// NormalizeHost converts an internationalized hostname to its ASCII form.
// ASCII names and IP literals are returned unchanged.
func NormalizeHost(host string) (string, error) {
	if host == "" {
		return "", errors.New("empty hostname")
	}
	if isASCII(host) {
		return host, nil
	}
	name, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", &net.DNSError{Err: fmt.Sprintf("invalid hostname: %v", err), Name: host}
	}
	return name, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
