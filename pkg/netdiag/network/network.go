// Package network provides address and server string parsing shared by the
// diagnostics.
package network

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// Errors
var (
	// ErrEmptyAddress is returned for an empty address or server string.
	ErrEmptyAddress = errors.New("empty address")
	// ErrInvalidPort is returned for port zero or a port outside 1-65535.
	ErrInvalidPort = errors.New("invalid port")
)

// ParseIP parses an IP address literal. Bracketed IPv6 literals ("[::1]") and
// zones ("fe80::1%eth0") are accepted, hostnames are not.
func ParseIP(s string) (netip.Addr, error) {
	if s == "" {
		return netip.Addr{}, ErrEmptyAddress
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = s[1 : len(s)-1]
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("parse IP address: %w", err)
	}
	return addr, nil
}

// ParseSocketAddr combines an IP address literal and a port into a socket
// address. IPv4-mapped IPv6 addresses are unmapped.
func ParseSocketAddr(address string, port uint16) (netip.AddrPort, error) {
	if port == 0 {
		return netip.AddrPort{}, ErrInvalidPort
	}
	addr, err := ParseIP(address)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return netip.AddrPortFrom(addr.Unmap(), port), nil
}

// SplitServer splits a server string of the form "host", "host:port",
// "ipv6" or "[ipv6]:port" into host and port. defaultPort is used when the
// string carries no port.
func SplitServer(server string, defaultPort uint16) (string, uint16, error) {
	if server == "" {
		return "", 0, ErrEmptyAddress
	}

	// A bare IPv6 literal contains colons but no port.
	if _, err := netip.ParseAddr(server); err == nil {
		return server, defaultPort, nil
	}
	if strings.HasPrefix(server, "[") && strings.HasSuffix(server, "]") {
		return server[1 : len(server)-1], defaultPort, nil
	}
	if !strings.Contains(server, ":") {
		return server, defaultPort, nil
	}

	host, portStr, err := net.SplitHostPort(server)
	if err != nil {
		return "", 0, fmt.Errorf("split server address: %w", err)
	}
	if host == "" {
		return "", 0, ErrEmptyAddress
	}
	port, err := ParsePort(portStr)
	if err != nil {
		return "", 0, err
	}
	return host, port, nil
}

// JoinServer is the inverse of SplitServer.
func JoinServer(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// ParsePort parses a decimal port in the range 1-65535.
func ParsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPort, s)
	}
	return uint16(v), nil
}
