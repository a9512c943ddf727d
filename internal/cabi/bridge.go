// Package cabi is the boundary contract layer behind the exported C
// functions. It validates arguments, calls the netdiag client, marshals
// results into caller buffers and reports the pinned integer codes.
//
// Pointer arguments arrive as Go values: a nil *string is an absent C
// string, a nil or empty []byte is an absent buffer or a zero capacity.
package cabi

import (
	"context"
	"time"

	"github.com/marcuoli/go-netdiag/pkg/netdiag"
)

// DebugLogger is a callback for debug logging.
// Set this to receive messages about rejected arguments and recovered panics.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Bridge adapts a netdiag.Client to the C calling convention.
type Bridge struct {
	client *netdiag.Client
}

// NewBridge creates a Bridge over client.
func NewBridge(client *netdiag.Client) *Bridge {
	return &Bridge{client: client}
}

func (b *Bridge) guard(op netdiag.Operation, code *int) {
	if r := recover(); r != nil {
		debugLog("%s: recovered panic: %v", op, r)
		*code = FailureCode(op)
	}
}

func invalid(op netdiag.Operation, what string) int {
	debugLog("%s: %s", op, what)
	return InvalidArgument
}

func millis(ms uint32) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// LookupHost resolves hostname and writes the chosen address into out.
func (b *Bridge) LookupHost(hostname *string, preferIPv4 bool, out []byte) (code int) {
	const op = netdiag.OpLookupHost
	defer b.guard(op, &code)

	if hostname == nil {
		return invalid(op, "hostname is NULL")
	}
	if len(out) == 0 {
		return invalid(op, "output buffer is NULL or empty")
	}

	addr, err := b.client.LookupHost(context.Background(), *hostname, preferIPv4)
	if err != nil {
		return Code(op, err)
	}
	WriteCString(out, addr.String())
	return Success
}

// ConnectionHealth probes a TCP connect to address:port.
func (b *Bridge) ConnectionHealth(address *string, port uint16, timeoutMS uint32) (code int) {
	const op = netdiag.OpConnectionHealth
	defer b.guard(op, &code)

	if address == nil {
		return invalid(op, "address is NULL")
	}
	if port == 0 {
		return invalid(op, "port is 0")
	}

	return Code(op, b.client.ConnectionHealth(context.Background(), *address, port, millis(timeoutMS)))
}

// MACAddress writes the local hardware address into out.
func (b *Bridge) MACAddress(out []byte) (code int) {
	const op = netdiag.OpMACAddress
	defer b.guard(op, &code)

	if len(out) == 0 {
		return invalid(op, "output buffer is NULL or empty")
	}

	mac, err := b.client.MACAddress()
	if err != nil {
		return Code(op, err)
	}
	WriteCString(out, mac)
	return Success
}

// TimeRequest stores the server time in seconds since the Unix epoch into
// out. A nil server selects the configured default.
func (b *Bridge) TimeRequest(server *string, timeoutMS uint32, out *int64) (code int) {
	const op = netdiag.OpTimeRequest
	defer b.guard(op, &code)

	if out == nil {
		return invalid(op, "timestamp pointer is NULL")
	}
	var s string
	if server != nil {
		if *server == "" {
			return invalid(op, "server is empty")
		}
		s = *server
	}

	now, err := b.client.TimeRequest(context.Background(), s, millis(timeoutMS))
	if err != nil {
		return Code(op, err)
	}
	*out = now.Unix()
	return Success
}

// NTPRequest stores the time of pool:port as 32-bit seconds since the Unix
// epoch into out.
func (b *Bridge) NTPRequest(pool *string, port uint32, out *uint32) (code int) {
	const op = netdiag.OpNTPRequest
	defer b.guard(op, &code)

	if pool == nil {
		return invalid(op, "pool is NULL")
	}
	if out == nil {
		return invalid(op, "timestamp pointer is NULL")
	}
	if port == 0 || port > 65535 {
		return invalid(op, "port out of range")
	}

	now, err := b.client.NTPRequest(context.Background(), *pool, uint16(port))
	if err != nil {
		return Code(op, err)
	}
	*out = uint32(now.Unix())
	return Success
}

// MACVendor writes the manufacturer of the local hardware address into out.
func (b *Bridge) MACVendor(out []byte) (code int) {
	const op = netdiag.OpMACVendor
	defer b.guard(op, &code)

	if len(out) == 0 {
		return invalid(op, "output buffer is NULL or empty")
	}

	vendor, err := b.client.MACVendor()
	if err != nil {
		return Code(op, err)
	}
	WriteCString(out, vendor.Manufacturer)
	return Success
}

// NeighborMAC writes the hardware address of the IPv4 neighbour address into
// out.
func (b *Bridge) NeighborMAC(address *string, timeoutMS uint32, out []byte) (code int) {
	const op = netdiag.OpNeighborMAC
	defer b.guard(op, &code)

	if address == nil {
		return invalid(op, "address is NULL")
	}
	if len(out) == 0 {
		return invalid(op, "output buffer is NULL or empty")
	}

	mac, err := b.client.NeighborMAC(context.Background(), *address, millis(timeoutMS))
	if err != nil {
		return Code(op, err)
	}
	WriteCString(out, mac)
	return Success
}
