// Command libnetdiag builds the C shared library:
//
//	go build -buildmode=c-shared -o libnetdiag.so ./cmd/libnetdiag
//
// cgo writes the matching libnetdiag.h next to the library. Every function
// is synchronous and may be called concurrently from any thread. Strings
// passed in are only read during the call, and output buffers are never
// retained. Text results are truncated to the declared size and always
// NUL terminated.
//
// The library reads its configuration once, on the first call, from the
// YAML file named by NETDIAG_CONFIG and the NETDIAG_* environment
// variables.
//
// # Return codes
//
// Every operation returns 0 on success and -1 for an invalid argument
// (NULL pointer, zero size, zero port, unparsable address or an
// out-of-range timeout). No network activity happens for -1. The other
// codes are per operation:
//
//	dn_lookup_host        -2 no address found                -3 resolution failed
//	dn_connection_health  -2 timed out                       -3 connect failed
//	dn_mac_address        -2 no interface                    -3 unknown error
//	dn_time_request       -2 timed out                       -3 request failed
//	dn_ntp_request        -2 NTP error
//	dn_mac_vendor         -2 no interface or vendor unknown  -3 failure
//	dn_neighbor_mac       -2 timed out                       -3 failure
//
// A timeout_ms of 0 selects the configured default (5000 ms unless set).
// Recommended buffer sizes are 46 bytes for addresses and 18 bytes for MAC
// addresses.
package main
