package resolve

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/miekg/dns"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
)

// Unicast resolves by querying the given DNS servers directly, bypassing the
// operating system's resolver configuration. Servers are tried in order and
// the first one that yields any address wins.
type Unicast struct {
	// Servers are "ip" or "ip:port" strings. Port defaults to 53.
	Servers []string
	// Net is "udp" or "tcp". Defaults to "udp".
	Net string
	// Timeout bounds each query.
	Timeout time.Duration
	// Dial is used to discover source addresses for ordering.
	Dial func(network, address string) (net.Conn, error)
}

// NewUnicast creates a unicast resolver for servers with defaults.
func NewUnicast(servers []string) *Unicast {
	return &Unicast{
		Servers: servers,
		Net:     "udp",
		Timeout: DefaultTimeout,
		Dial:    net.Dial,
	}
}

// LookupNetIP implements Resolver.
func (u *Unicast) LookupNetIP(ctx context.Context, host string) ([]netip.Addr, error) {
	name, err := NormalizeHost(host)
	if err != nil {
		return nil, err
	}

	// IP literals resolve to themselves, like the system resolver.
	if addr, err := netip.ParseAddr(name); err == nil {
		return []netip.Addr{addr.Unmap()}, nil
	}

	if len(u.Servers) == 0 {
		return nil, &net.DNSError{Err: "no DNS servers configured", Name: name}
	}

	client := &dns.Client{Net: u.Net, Timeout: u.Timeout}
	if client.Net == "" {
		client.Net = "udp"
	}
	if client.Timeout <= 0 {
		client.Timeout = DefaultTimeout
	}

	var queryResult *multierror.Error
	answered := false
	for _, server := range u.Servers {
		host, port, err := network.SplitServer(server, 53)
		if err != nil {
			queryResult = multierror.Append(queryResult, fmt.Errorf("DNS server %q: %w", server, err))
			continue
		}
		serverAddr := network.JoinServer(host, port)

		var addrs []netip.Addr
		for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
			in, err := u.query(ctx, client, serverAddr, name, qtype)
			if err != nil {
				queryResult = multierror.Append(queryResult, err)
				continue
			}
			answered = true
			addrs = append(addrs, answerAddrs(in)...)
		}

		if len(addrs) > 0 {
			SortByRFC6724(addrs, SourceAddrs(u.Dial, addrs))
			debugLog("%s -> %v (via %s)", name, addrs, serverAddr)
			return addrs, nil
		}
	}

	// The name exists but has no address records.
	if answered {
		debugLog("%s: no A or AAAA records", name)
		return []netip.Addr{}, nil
	}
	if queryResult != nil {
		return nil, &net.DNSError{Err: queryResult.Error(), Name: name}
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (u *Unicast) query(ctx context.Context, client *dns.Client, server, name string, qtype uint16) (*dns.Msg, error) {
	ctx, cancel := context.WithTimeout(ctx, client.Timeout)
	defer cancel()

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	in, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return nil, fmt.Errorf("query %s %s at %s: %w", dns.TypeToString[qtype], name, server, err)
	}
	if in.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("query %s %s at %s: %s", dns.TypeToString[qtype], name, server, dns.RcodeToString[in.Rcode])
	}
	return in, nil
}

func answerAddrs(in *dns.Msg) []netip.Addr {
	var addrs []netip.Addr
	for _, rr := range in.Answer {
		var ip net.IP
		switch rr := rr.(type) {
		case *dns.A:
			ip = rr.A
		case *dns.AAAA:
			ip = rr.AAAA
		default:
			continue
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			addrs = append(addrs, addr.Unmap())
		}
	}
	return addrs
}
