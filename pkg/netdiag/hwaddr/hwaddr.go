// Package hwaddr reads the hardware address of the local machine's first
// active network interface.
package hwaddr

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrNoInterface is returned when no active interface has a hardware address.
var ErrNoInterface = errors.New("no active interface with a hardware address")

// Source enumerates network interfaces.
type Source interface {
	Interfaces() ([]net.Interface, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func() ([]net.Interface, error)

// Interfaces implements Source.
func (f SourceFunc) Interfaces() ([]net.Interface, error) {
	return f()
}

// System enumerates the operating system's interface table.
var System Source = SourceFunc(net.Interfaces)

// Lookup returns the hardware address of the first active interface in src.
func Lookup(src Source) (net.HardwareAddr, error) {
	ifaces, err := src.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("enumerate interfaces: %w", err)
	}
	iface, err := FirstActive(ifaces)
	if err != nil {
		return nil, err
	}
	return iface.HardwareAddr, nil
}

// FirstActive returns the first interface, in the given order, that is up,
// is not a loopback and has a non-zero hardware address.
func FirstActive(ifaces []net.Interface) (*net.Interface, error) {
	for i := range ifaces {
		iface := &ifaces[i]
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if isZero(iface.HardwareAddr) {
			continue
		}
		return iface, nil
	}
	return nil, ErrNoInterface
}

// Format renders a hardware address as uppercase colon-separated hex,
// e.g. "00:1A:2B:3C:4D:5E".
func Format(mac net.HardwareAddr) string {
	return strings.ToUpper(mac.String())
}

func isZero(mac net.HardwareAddr) bool {
	for _, b := range mac {
		if b != 0 {
			return false
		}
	}
	return true
}
