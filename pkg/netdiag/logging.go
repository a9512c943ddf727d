// Package netdiag: debug logging wiring for subpackages.
package netdiag

import (
	"github.com/marcuoli/go-netdiag/pkg/netdiag/arp"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/ntp"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/oui"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/probe"
	"github.com/marcuoli/go-netdiag/pkg/netdiag/resolve"
)

// tagNTP marks NTP protocol messages, which serve both time_request and
// ntp_request.
const tagNTP Operation = "ntp"

// Subpackage messages are protocol detail and only reach the logger at
// DebugVerbose.
func init() {
	resolve.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(OpLookupHost, format, args...)
	}
	probe.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(OpConnectionHealth, format, args...)
	}
	ntp.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(tagNTP, format, args...)
	}
	oui.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(OpMACVendor, format, args...)
	}
	arp.DebugLogger = func(format string, args ...interface{}) {
		debugLogVerbose(OpNeighborMAC, format, args...)
	}
}
