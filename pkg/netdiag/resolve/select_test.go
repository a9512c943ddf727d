package resolve_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/resolve"
)

func addrs(ss ...string) []netip.Addr {
	out := make([]netip.Addr, len(ss))
	for i, s := range ss {
		out[i] = netip.MustParseAddr(s)
	}
	return out
}

func TestSelectAddress(t *testing.T) {
	t.Run("PreferIPv4SkipsIPv6", func(t *testing.T) {
		addr, err := resolve.SelectAddress(addrs("::1", "fe80::1", "127.0.0.1", "10.0.0.1"), true)
		require.NoError(t, err)
		require.Equal(t, "127.0.0.1", addr.String())
	})

	t.Run("NoPreferenceTakesFirst", func(t *testing.T) {
		addr, err := resolve.SelectAddress(addrs("::1", "127.0.0.1"), false)
		require.NoError(t, err)
		require.Equal(t, "::1", addr.String())
	})

	t.Run("MappedCountsAsIPv4", func(t *testing.T) {
		addr, err := resolve.SelectAddress(addrs("2001:db8::1", "::ffff:192.0.2.1"), true)
		require.NoError(t, err)
		require.Equal(t, "192.0.2.1", addr.String())
	})

	t.Run("IPv6OnlyWithPreference", func(t *testing.T) {
		_, err := resolve.SelectAddress(addrs("::1"), true)
		require.ErrorIs(t, err, resolve.ErrNoAddress)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := resolve.SelectAddress(nil, false)
		require.ErrorIs(t, err, resolve.ErrNoAddress)

		_, err = resolve.SelectAddress([]netip.Addr{{}}, false)
		require.ErrorIs(t, err, resolve.ErrNoAddress)
	})

	t.Run("DoesNotReorder", func(t *testing.T) {
		in := addrs("::1", "127.0.0.1")
		_, err := resolve.SelectAddress(in, true)
		require.NoError(t, err)
		require.Equal(t, addrs("::1", "127.0.0.1"), in)
	})
}

func TestIPVersion(t *testing.T) {
	t.Run("IPv4", func(t *testing.T) {
		require.True(t, resolve.HasIPv4(addrs("127.0.0.1")))
		require.False(t, resolve.HasIPv6(addrs("127.0.0.1")))
	})

	t.Run("IPv6", func(t *testing.T) {
		require.False(t, resolve.HasIPv4(addrs("::1")))
		require.True(t, resolve.HasIPv6(addrs("::1")))
	})

	t.Run("Mapped", func(t *testing.T) {
		require.True(t, resolve.HasIPv4(addrs("::ffff:127.0.0.1")))
		require.False(t, resolve.HasIPv6(addrs("::ffff:127.0.0.1")))
	})
}
