package resolve

import "net/netip"

// SelectAddress returns the first candidate matching the preference. With
// preferIPv4 only IPv4 candidates (IPv4-mapped IPv6 included) match, otherwise
// the first candidate is returned. The order of addrs is not changed.
func SelectAddress(addrs []netip.Addr, preferIPv4 bool) (netip.Addr, error) {
	for _, addr := range addrs {
		if !addr.IsValid() {
			continue
		}
		if preferIPv4 && !addr.Unmap().Is4() {
			continue
		}
		return addr.Unmap(), nil
	}
	return netip.Addr{}, ErrNoAddress
}

// HasIPv4 returns true if the list of addresses contains an IPv4 address.
func HasIPv4(addrs []netip.Addr) bool {
	for _, addr := range addrs {
		if addr.Unmap().Is4() {
			return true
		}
	}
	return false
}

// HasIPv6 returns true if the list of addresses contains an IPv6 address.
func HasIPv6(addrs []netip.Addr) bool {
	for _, addr := range addrs {
		if addr.Is6() && !addr.Is4In6() {
			return true
		}
	}
	return false
}
