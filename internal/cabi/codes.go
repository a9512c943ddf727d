package cabi

import (
	"github.com/marcuoli/go-netdiag/pkg/netdiag"
)

// Codes shared by every operation.
const (
	Success         = 0
	InvalidArgument = -1
)

// lookup_host
const (
	LookupNoAddress        = -2
	LookupResolutionFailed = -3
)

// connection_health
const (
	HealthTimedOut      = -2
	HealthConnectFailed = -3
)

// mac_address
const (
	MACNoInterface = -2
	MACUnknown     = -3
)

// time_request
const (
	TimeTimedOut      = -2
	TimeRequestFailed = -3
)

// ntp_request
const (
	NTPError = -2
)

// mac_vendor
const (
	VendorNotFound = -2
	VendorFailed   = -3
)

// neighbor_mac
const (
	NeighborTimedOut = -2
	NeighborFailed   = -3
)

type codeTable struct {
	kinds   map[netdiag.Kind]int
	failure int
}

var codes = map[netdiag.Operation]codeTable{
	netdiag.OpLookupHost: {
		kinds:   map[netdiag.Kind]int{netdiag.KindNotFound: LookupNoAddress},
		failure: LookupResolutionFailed,
	},
	netdiag.OpConnectionHealth: {
		kinds:   map[netdiag.Kind]int{netdiag.KindTimedOut: HealthTimedOut},
		failure: HealthConnectFailed,
	},
	netdiag.OpMACAddress: {
		kinds:   map[netdiag.Kind]int{netdiag.KindNotFound: MACNoInterface},
		failure: MACUnknown,
	},
	netdiag.OpTimeRequest: {
		kinds:   map[netdiag.Kind]int{netdiag.KindTimedOut: TimeTimedOut},
		failure: TimeRequestFailed,
	},
	netdiag.OpNTPRequest: {
		failure: NTPError,
	},
	netdiag.OpMACVendor: {
		kinds:   map[netdiag.Kind]int{netdiag.KindNotFound: VendorNotFound},
		failure: VendorFailed,
	},
	netdiag.OpNeighborMAC: {
		kinds:   map[netdiag.Kind]int{netdiag.KindTimedOut: NeighborTimedOut},
		failure: NeighborFailed,
	},
}

// Code returns the pinned return code of op for err. A nil err is Success.
func Code(op netdiag.Operation, err error) int {
	if err == nil {
		return Success
	}
	kind := netdiag.KindOf(err)
	if kind == netdiag.KindInvalidArgument {
		return InvalidArgument
	}
	t := codes[op]
	if code, ok := t.kinds[kind]; ok {
		return code
	}
	return t.failure
}

// FailureCode returns the generic failure code of op.
func FailureCode(op netdiag.Operation) int {
	return codes[op].failure
}
