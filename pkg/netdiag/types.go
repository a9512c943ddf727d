// Package netdiag provides a small set of stateless network diagnostics:
// hostname resolution with an address family preference, timeout-bounded TCP
// reachability probes, the local hardware address and remote wall-clock time
// over NTP.
//
// Every operation is synchronous and independent. A Client holds only its
// collaborators and defaults, so it can be shared by any number of goroutines.
// The C-compatible export layer in cmd/libnetdiag is a thin shim over Client.
package netdiag

import "time"

// Operation names a diagnostic operation. It tags errors and debug messages.
type Operation string

const (
	OpLookupHost       Operation = "lookup_host"
	OpConnectionHealth Operation = "connection_health"
	OpMACAddress       Operation = "mac_address"
	OpTimeRequest      Operation = "time_request"
	OpNTPRequest       Operation = "ntp_request"  // fixed pool and port variant
	OpMACVendor        Operation = "mac_vendor"   // OUI lookup of the local MAC
	OpNeighborMAC      Operation = "neighbor_mac" // ARP lookup of a neighbour
)

// DefaultTimeout is used when an operation is given a zero timeout.
const DefaultTimeout = 5 * time.Second

// MaxTimeout is the longest timeout any operation accepts.
const MaxTimeout = 10 * time.Minute

// DefaultTimeServer is queried when no time server is given.
const DefaultTimeServer = "pool.ntp.org"
