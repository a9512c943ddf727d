package cabi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-netdiag/pkg/netdiag"
)

func TestCode(t *testing.T) {
	kindErr := func(op netdiag.Operation, k netdiag.Kind) error {
		return &netdiag.Error{Op: op, Kind: k, Err: errors.New("x")}
	}

	tests := []struct {
		op   netdiag.Operation
		kind netdiag.Kind
		want int
	}{
		{netdiag.OpLookupHost, netdiag.KindInvalidArgument, -1},
		{netdiag.OpLookupHost, netdiag.KindNotFound, -2},
		{netdiag.OpLookupHost, netdiag.KindFailed, -3},
		{netdiag.OpLookupHost, netdiag.KindTimedOut, -3},
		{netdiag.OpConnectionHealth, netdiag.KindTimedOut, -2},
		{netdiag.OpConnectionHealth, netdiag.KindFailed, -3},
		{netdiag.OpMACAddress, netdiag.KindNotFound, -2},
		{netdiag.OpMACAddress, netdiag.KindFailed, -3},
		{netdiag.OpTimeRequest, netdiag.KindTimedOut, -2},
		{netdiag.OpTimeRequest, netdiag.KindFailed, -3},
		{netdiag.OpTimeRequest, netdiag.KindInvalidArgument, -1},
		{netdiag.OpNTPRequest, netdiag.KindTimedOut, -2},
		{netdiag.OpNTPRequest, netdiag.KindFailed, -2},
		{netdiag.OpNTPRequest, netdiag.KindInvalidArgument, -1},
		{netdiag.OpMACVendor, netdiag.KindNotFound, -2},
		{netdiag.OpMACVendor, netdiag.KindFailed, -3},
		{netdiag.OpNeighborMAC, netdiag.KindTimedOut, -2},
		{netdiag.OpNeighborMAC, netdiag.KindFailed, -3},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, Code(tt.op, kindErr(tt.op, tt.kind)), "%s %s", tt.op, tt.kind)
	}

	require.Equal(t, Success, Code(netdiag.OpLookupHost, nil))
	require.Equal(t, HealthConnectFailed, Code(netdiag.OpConnectionHealth, errors.New("plain")))
}
