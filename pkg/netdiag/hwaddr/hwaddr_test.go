package hwaddr_test

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/hwaddr"
)

func mac(t *testing.T, s string) net.HardwareAddr {
	t.Helper()
	hw, err := net.ParseMAC(s)
	require.NoError(t, err)
	return hw
}

func TestFirstActive(t *testing.T) {
	ifaces := []net.Interface{
		{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
		{Name: "eth0", Flags: 0, HardwareAddr: mac(t, "02:00:00:00:00:01")},
		{Name: "tun0", Flags: net.FlagUp | net.FlagPointToPoint},
		{Name: "dummy0", Flags: net.FlagUp, HardwareAddr: mac(t, "00:00:00:00:00:00")},
		{Name: "eth1", Flags: net.FlagUp | net.FlagBroadcast, HardwareAddr: mac(t, "02:00:00:00:00:02")},
		{Name: "eth2", Flags: net.FlagUp | net.FlagBroadcast, HardwareAddr: mac(t, "02:00:00:00:00:03")},
	}

	iface, err := hwaddr.FirstActive(ifaces)
	require.NoError(t, err)
	require.Equal(t, "eth1", iface.Name)
}

func TestFirstActive_None(t *testing.T) {
	_, err := hwaddr.FirstActive([]net.Interface{
		{Name: "lo", Flags: net.FlagUp | net.FlagLoopback, HardwareAddr: mac(t, "02:00:00:00:00:01")},
	})
	require.ErrorIs(t, err, hwaddr.ErrNoInterface)

	_, err = hwaddr.FirstActive(nil)
	require.ErrorIs(t, err, hwaddr.ErrNoInterface)
}

func TestLookup(t *testing.T) {
	src := hwaddr.SourceFunc(func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "eth0", Flags: net.FlagUp, HardwareAddr: mac(t, "aa:bb:cc:dd:ee:0f")},
		}, nil
	})

	hw, err := hwaddr.Lookup(src)
	require.NoError(t, err)
	require.Equal(t, "AA:BB:CC:DD:EE:0F", hwaddr.Format(hw))
	require.Len(t, hwaddr.Format(hw), 17)
}

func TestLookup_SourceError(t *testing.T) {
	boom := errors.New("netlink unavailable")
	_, err := hwaddr.Lookup(hwaddr.SourceFunc(func() ([]net.Interface, error) {
		return nil, boom
	}))
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, hwaddr.ErrNoInterface)
}

func TestLookup_System(t *testing.T) {
	first, err := hwaddr.Lookup(hwaddr.System)
	if err != nil {
		t.Skipf("no usable interface here: %v", err)
	}

	second, err := hwaddr.Lookup(hwaddr.System)
	require.NoError(t, err)
	require.Equal(t, hwaddr.Format(first), hwaddr.Format(second))
}
