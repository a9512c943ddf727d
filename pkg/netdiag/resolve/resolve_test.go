package resolve_test

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"

	"github.com/marcuoli/go-netdiag/pkg/netdiag"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/resolve"
)

func noRoute(string, string) (net.Conn, error) {
	return nil, errors.New("no route")
}

// startDNSServer serves A and AAAA records for the given names on a loopback
// UDP port. Unknown names get NXDOMAIN.
func startDNSServer(t *testing.T, records map[string][]string) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	mux := dns.NewServeMux()
	mux.HandleFunc(".", func(w dns.ResponseWriter, r *dns.Msg) {
		m := new(dns.Msg)
		m.SetReply(r)

		q := r.Question[0]
		ips, ok := records[q.Name]
		if !ok {
			m.Rcode = dns.RcodeNameError
			_ = w.WriteMsg(m)
			return
		}

		for _, ip := range ips {
			addr := netip.MustParseAddr(ip)
			hdr := dns.RR_Header{Name: q.Name, Class: dns.ClassINET, Ttl: 60}
			switch {
			case addr.Is4() && q.Qtype == dns.TypeA:
				hdr.Rrtype = dns.TypeA
				m.Answer = append(m.Answer, &dns.A{Hdr: hdr, A: net.IP(addr.AsSlice())})
			case addr.Is6() && q.Qtype == dns.TypeAAAA:
				hdr.Rrtype = dns.TypeAAAA
				m.Answer = append(m.Answer, &dns.AAAA{Hdr: hdr, AAAA: net.IP(addr.AsSlice())})
			}
		}
		_ = w.WriteMsg(m)
	})

	started := make(chan struct{})
	srv := &dns.Server{PacketConn: pc, Handler: mux, NotifyStartedFunc: func() { close(started) }}
	go func() {
		_ = srv.ActivateAndServe()
	}()
	<-started
	t.Cleanup(func() {
		_ = srv.Shutdown()
	})

	return pc.LocalAddr().String()
}

func TestUnicast(t *testing.T) {
	server := startDNSServer(t, map[string][]string{
		"dual.test.":      {"192.0.2.10", "2001:db8::10"},
		"v6only.test.":    {"2001:db8::20"},
		"norecords.test.": {},
	})

	u := resolve.NewUnicast([]string{server})
	u.Timeout = 2 * time.Second
	u.Dial = noRoute

	ctx := context.Background()

	t.Run("DualStack", func(t *testing.T) {
		got, err := u.LookupNetIP(ctx, "dual.test")
		require.NoError(t, err)
		require.Equal(t, []netip.Addr{
			netip.MustParseAddr("192.0.2.10"),
			netip.MustParseAddr("2001:db8::10"),
		}, got)
	})

	t.Run("IPv6Only", func(t *testing.T) {
		got, err := u.LookupNetIP(ctx, "v6only.test")
		require.NoError(t, err)

		_, err = resolve.SelectAddress(got, true)
		require.ErrorIs(t, err, resolve.ErrNoAddress)
	})

	t.Run("NoRecords", func(t *testing.T) {
		got, err := u.LookupNetIP(ctx, "norecords.test")
		require.NoError(t, err)
		require.Empty(t, got)

		_, err = resolve.SelectAddress(got, false)
		require.ErrorIs(t, err, resolve.ErrNoAddress)
	})

	t.Run("NoRecordsIsNotFound", func(t *testing.T) {
		client := netdiag.New(netdiag.Options{Resolver: u})
		_, err := client.LookupHost(ctx, "norecords.test", false)
		require.Equal(t, netdiag.KindNotFound, netdiag.KindOf(err))

		_, err = client.LookupHost(ctx, "missing.test", false)
		require.Equal(t, netdiag.KindFailed, netdiag.KindOf(err))
	})

	t.Run("NXDOMAIN", func(t *testing.T) {
		_, err := u.LookupNetIP(ctx, "missing.test")
		require.Error(t, err)

		var dnsErr *net.DNSError
		require.ErrorAs(t, err, &dnsErr)
		require.Equal(t, "missing.test", dnsErr.Name)
	})

	t.Run("Literal", func(t *testing.T) {
		got, err := u.LookupNetIP(ctx, "::1")
		require.NoError(t, err)
		require.Equal(t, []netip.Addr{netip.MustParseAddr("::1")}, got)
	})
}

func TestUnicast_FallsThroughServers(t *testing.T) {
	empty := startDNSServer(t, map[string][]string{})
	full := startDNSServer(t, map[string][]string{"host.test.": {"192.0.2.30"}})

	u := resolve.NewUnicast([]string{"127.0.0.1:0", empty, full})
	u.Timeout = 2 * time.Second
	u.Dial = noRoute

	got, err := u.LookupNetIP(context.Background(), "host.test")
	require.NoError(t, err)
	require.Equal(t, []netip.Addr{netip.MustParseAddr("192.0.2.30")}, got)
}

func TestUnicast_NoServers(t *testing.T) {
	u := resolve.NewUnicast(nil)
	_, err := u.LookupNetIP(context.Background(), "host.test")
	require.Error(t, err)
}

func TestSystem_Literal(t *testing.T) {
	r := resolve.NewSystem()

	got, err := r.LookupNetIP(context.Background(), "::1")
	require.NoError(t, err)

	_, err = resolve.SelectAddress(got, true)
	require.ErrorIs(t, err, resolve.ErrNoAddress)
}

func TestSystem_Localhost(t *testing.T) {
	r := resolve.NewSystem()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := r.LookupNetIP(ctx, "localhost")
	if err != nil {
		t.Skipf("localhost does not resolve here: %v", err)
	}
	t.Logf("localhost -> %v", got)

	if resolve.HasIPv4(got) {
		addr, err := resolve.SelectAddress(got, true)
		require.NoError(t, err)
		require.True(t, addr.IsLoopback(), "expected loopback, got %s", addr)
		require.True(t, addr.Is4())
	}
}

func TestSystem_Unresolvable(t *testing.T) {
	r := resolve.NewSystem()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := r.LookupNetIP(ctx, "abc123.invalid")
	require.Error(t, err)
}

func TestNormalizeHost(t *testing.T) {
	name, err := resolve.NormalizeHost("bücher.example")
	require.NoError(t, err)
	require.Equal(t, "xn--bcher-kva.example", name)

	name, err = resolve.NormalizeHost("localhost")
	require.NoError(t, err)
	require.Equal(t, "localhost", name)

	_, err = resolve.NormalizeHost("")
	require.Error(t, err)
}
