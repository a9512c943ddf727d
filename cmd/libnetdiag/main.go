package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>
*/
import "C"

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"unsafe"

	"github.com/marcuoli/go-netdiag/internal/cabi"
	"github.com/marcuoli/go-netdiag/internal/config"
	"github.com/marcuoli/go-netdiag/pkg/netdiag"
)

// Allocated once and never freed.
var (
	versionCStr     = C.CString(netdiag.Version)
	versionInfoCStr = C.CString(netdiag.VersionInfo())
)

var bridge = sync.OnceValue(func() *cabi.Bridge {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	conf, err := config.FromEnv()
	if err != nil {
		logger.Warn("Ignoring invalid configuration", "error", err)
		conf = &config.Config{}
	}

	if level := conf.DebugLevel(); level > netdiag.DebugOff {
		netdiag.SetDebugLogger(netdiag.SlogDebugLogger(logger))
		netdiag.SetDebugLevel(level)
		cabi.DebugLogger = func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(format, args...), "layer", "abi")
		}
	}

	return cabi.NewBridge(netdiag.New(conf.Options()))
})

func goString(p *C.char) *string {
	if p == nil {
		return nil
	}
	s := C.GoString(p)
	return &s
}

func goBuffer(p *C.char, size C.size_t) []byte {
	n := cabi.Cap(uint64(size))
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

//export dn_version
func dn_version() *C.char {
	return versionCStr
}

//export dn_version_info
func dn_version_info() *C.char {
	return versionInfoCStr
}

//export dn_lookup_host
func dn_lookup_host(hostname *C.char, preferIPv4 C.bool, out *C.char, size C.size_t) C.int {
	return C.int(bridge().LookupHost(goString(hostname), bool(preferIPv4), goBuffer(out, size)))
}

//export dn_connection_health
func dn_connection_health(address *C.char, port C.uint16_t, timeoutMS C.uint) C.int {
	return C.int(bridge().ConnectionHealth(goString(address), uint16(port), uint32(timeoutMS)))
}

//export dn_mac_address
func dn_mac_address(out *C.char, size C.size_t) C.int {
	return C.int(bridge().MACAddress(goBuffer(out, size)))
}

//export dn_time_request
func dn_time_request(server *C.char, timeoutMS C.uint, timestamp *C.longlong) C.int {
	var ts *int64
	if timestamp != nil {
		ts = new(int64)
	}
	code := bridge().TimeRequest(goString(server), uint32(timeoutMS), ts)
	if code == cabi.Success {
		*timestamp = C.longlong(*ts)
	}
	return C.int(code)
}

//export dn_ntp_request
func dn_ntp_request(pool *C.char, port C.uint, timestamp *C.uint) C.int {
	var ts *uint32
	if timestamp != nil {
		ts = new(uint32)
	}
	code := bridge().NTPRequest(goString(pool), uint32(port), ts)
	if code == cabi.Success {
		*timestamp = C.uint(*ts)
	}
	return C.int(code)
}

//export dn_mac_vendor
func dn_mac_vendor(out *C.char, size C.size_t) C.int {
	return C.int(bridge().MACVendor(goBuffer(out, size)))
}

//export dn_neighbor_mac
func dn_neighbor_mac(address *C.char, timeoutMS C.uint, out *C.char, size C.size_t) C.int {
	return C.int(bridge().NeighborMAC(goString(address), uint32(timeoutMS), goBuffer(out, size)))
}

func main() {}
