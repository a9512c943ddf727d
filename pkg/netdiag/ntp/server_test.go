package ntp_test

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-netdiag/pkg/netdiag"
	netdiagntp "github.com/marcuoli/go-netdiag/pkg/netdiag/ntp"
)

var ntpEpoch = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

func putNTPTime(b []byte, t time.Time) {
	d := t.Sub(ntpEpoch)
	sec := uint64(d / time.Second)
	frac := (uint64(d%time.Second) << 32) / uint64(time.Second)
	binary.BigEndian.PutUint64(b, sec<<32|frac)
}

// startNTPServer answers every request on a loopback UDP port with a
// synchronized stratum 2 reply stamped with the local clock.
func startNTPServer(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = pc.Close()
	})

	go func() {
		req := make([]byte, 512)
		for {
			n, addr, err := pc.ReadFrom(req)
			if err != nil {
				return
			}
			if n < 48 {
				continue
			}
			recv := time.Now()

			resp := make([]byte, 48)
			resp[0] = 4<<3 | 4 // LI 0, version 4, mode server
			resp[1] = 2        // stratum
			resp[2] = 6        // poll
			resp[3] = 0xec     // precision -20
			copy(resp[12:16], "LOCL")
			putNTPTime(resp[16:24], recv.Add(-time.Minute))
			copy(resp[24:32], req[40:48]) // origin = client transmit
			putNTPTime(resp[32:40], recv)
			putNTPTime(resp[40:48], time.Now())

			_, _ = pc.WriteTo(resp, addr)
		}
	}()

	return pc.LocalAddr().String()
}

func TestClient_LoopbackExchange(t *testing.T) {
	server := startNTPServer(t)
	c := netdiagntp.NewClient()
	ctx := context.Background()

	first, err := c.Query(ctx, server, 2*time.Second)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), first, 5*time.Second)

	time.Sleep(20 * time.Millisecond)

	second, err := c.Query(ctx, server, 2*time.Second)
	require.NoError(t, err)
	require.False(t, second.Before(first), "second %s before first %s", second, first)
}

func TestTimeRequest_NonDecreasing(t *testing.T) {
	client := netdiag.New(netdiag.Options{TimeServer: startNTPServer(t)})
	ctx := context.Background()

	ts1, err := client.TimeRequest(ctx, "", time.Second)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	ts2, err := client.TimeRequest(ctx, "", time.Second)
	require.NoError(t, err)
	require.GreaterOrEqual(t, ts2.Unix(), ts1.Unix())
}

func TestClient_PublicPool(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	c := netdiagntp.NewClient()
	ctx := context.Background()

	first, err := c.Query(ctx, "pool.ntp.org", 3*time.Second)
	if err != nil {
		t.Skipf("pool.ntp.org unreachable: %v", err)
	}
	second, err := c.Query(ctx, "pool.ntp.org", 3*time.Second)
	if err != nil {
		t.Skipf("pool.ntp.org unreachable: %v", err)
	}
	// Successive queries may reach different pool members.
	t.Logf("pool.ntp.org -> %s, %s", first.UTC(), second.UTC())
	require.False(t, first.IsZero())
	require.False(t, second.IsZero())
}
