package resolve

import (
	"net"
	"net/netip"
	"sort"
)

// SourceAddrs finds the source address the host would use for each
// destination by connecting a UDP socket, which sends no packets. Entries are
// left invalid for unroutable destinations.
func SourceAddrs(dial func(network, address string) (net.Conn, error), addrs []netip.Addr) []netip.Addr {
	if dial == nil {
		dial = net.Dial
	}
	srcs := make([]netip.Addr, len(addrs))
	for i, addr := range addrs {
		c, err := dial("udp", netip.AddrPortFrom(addr, 9).String())
		if err != nil {
			continue
		}
		if local, ok := c.LocalAddr().(*net.UDPAddr); ok {
			srcs[i] = local.AddrPort().Addr().Unmap()
		}
		_ = c.Close()
	}
	return srcs
}

// SortByRFC6724 orders addrs in place, best destination first, following
// RFC 6724 section 6. srcs[i] is the source address for addrs[i].
// Rules 3, 4 and 7 need information the host does not expose and are skipped.
func SortByRFC6724(addrs, srcs []netip.Addr) {
	if len(addrs) < 2 || len(addrs) != len(srcs) {
		return
	}

	cands := make([]candidate, len(addrs))
	for i := range addrs {
		cands[i] = candidate{
			dst:     addrs[i],
			src:     srcs[i],
			dstAttr: attrOf(addrs[i]),
			srcAttr: attrOf(srcs[i]),
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].better(&cands[j])
	})
	for i := range cands {
		addrs[i] = cands[i].dst
		srcs[i] = cands[i].src
	}
}

type candidate struct {
	dst, src         netip.Addr
	dstAttr, srcAttr addrAttr
}

// better reports whether a is a strictly better destination than b.
func (a *candidate) better(b *candidate) bool {
	// Rule 1: avoid unusable destinations.
	if a.src.IsValid() != b.src.IsValid() {
		return a.src.IsValid()
	}
	if !a.src.IsValid() {
		return false
	}

	// Rule 2: prefer matching scope.
	aScope := a.dstAttr.scope == a.srcAttr.scope
	bScope := b.dstAttr.scope == b.srcAttr.scope
	if aScope != bScope {
		return aScope
	}

	// Rule 5: prefer matching label.
	aLabel := a.dstAttr.label == a.srcAttr.label
	bLabel := b.dstAttr.label == b.srcAttr.label
	if aLabel != bLabel {
		return aLabel
	}

	// Rule 6: prefer higher precedence.
	if a.dstAttr.precedence != b.dstAttr.precedence {
		return a.dstAttr.precedence > b.dstAttr.precedence
	}

	// Rule 8: prefer smaller scope.
	if a.dstAttr.scope != b.dstAttr.scope {
		return a.dstAttr.scope < b.dstAttr.scope
	}

	// Rule 9: longest matching prefix, IPv6 only (see golang/go#13283).
	if a.dst.Is6() && b.dst.Is6() {
		ca, cb := commonPrefixLen(a.src, a.dst), commonPrefixLen(b.src, b.dst)
		if ca != cb {
			return ca > cb
		}
	}

	// Rule 10: leave the order unchanged.
	return false
}

type addrAttr struct {
	scope      uint8
	precedence uint8
	label      uint8
}

func attrOf(ip netip.Addr) addrAttr {
	if !ip.IsValid() {
		return addrAttr{}
	}
	ent := classify(ip)
	return addrAttr{scope: scopeOf(ip), precedence: ent.precedence, label: ent.label}
}

type policy struct {
	prefix     netip.Prefix
	precedence uint8
	label      uint8
}

// RFC 6724 section 2.1, longest prefix first.
var policyTable = []policy{
	{netip.MustParsePrefix("::1/128"), 50, 0},
	{netip.MustParsePrefix("::ffff:0:0/96"), 35, 4},
	{netip.MustParsePrefix("::/96"), 1, 3},
	{netip.MustParsePrefix("2001::/32"), 5, 5},
	{netip.MustParsePrefix("2002::/16"), 30, 2},
	{netip.MustParsePrefix("3ffe::/16"), 1, 12},
	{netip.MustParsePrefix("fec0::/10"), 1, 11},
	{netip.MustParsePrefix("fc00::/7"), 3, 13},
	{netip.MustParsePrefix("::/0"), 40, 1},
}

func classify(ip netip.Addr) policy {
	ip16 := netip.AddrFrom16(ip.As16())
	for _, p := range policyTable {
		if p.prefix.Contains(ip16) {
			return p
		}
	}
	return policy{}
}

// RFC 6724 section 3.1.
const (
	scopeLinkLocal uint8 = 0x2
	scopeSiteLocal uint8 = 0x5
	scopeGlobal    uint8 = 0xe
)

func scopeOf(ip netip.Addr) uint8 {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return scopeLinkLocal
	}
	if ip.Is6() && !ip.Is4In6() {
		b := ip.As16()
		if ip.IsMulticast() {
			return b[1] & 0xf
		}
		if b[0] == 0xfe && b[1]&0xc0 == 0xc0 {
			return scopeSiteLocal
		}
	}
	return scopeGlobal
}

// commonPrefixLen counts the leading bits a and b share. IPv6 addresses are
// compared over their 64-bit prefix only; mixed families share nothing.
func commonPrefixLen(a, b netip.Addr) int {
	a, b = a.Unmap(), b.Unmap()
	if a.Is4() != b.Is4() {
		return 0
	}
	as, bs := a.AsSlice(), b.AsSlice()
	if len(as) > 8 {
		as, bs = as[:8], bs[:8]
	}
	n := 0
	for i := range as {
		x := as[i] ^ bs[i]
		if x == 0 {
			n += 8
			continue
		}
		for x&0x80 == 0 {
			n++
			x <<= 1
		}
		break
	}
	return n
}
