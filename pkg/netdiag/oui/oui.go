// Package oui resolves MAC addresses to vendor/manufacturer names using an
// IEEE OUI database file.
package oui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/oui"
)

// Errors
var (
	// ErrNoDatabase is returned when no database path is configured.
	ErrNoDatabase = errors.New("no OUI database configured")
	// ErrVendorNotFound is returned when the prefix is not in the database.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrInvalidMAC is returned for a MAC address that cannot be parsed.
	ErrInvalidMAC = errors.New("invalid MAC address")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from OUI operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// VendorInfo contains information about a MAC address vendor.
type VendorInfo struct {
	Manufacturer string
	Address      []string
	Country      string
	Prefix       string
}

type querier interface {
	Query(string) (*oui.Entry, error)
}

// Database is an OUI database loaded lazily from a file on first lookup.
// It is safe for concurrent use.
type Database struct {
	path string

	once sync.Once
	db   querier
	err  error
}

// Open returns a database backed by the IEEE oui.txt file at path. The file
// is read on first lookup. An empty path yields a database whose lookups fail
// with ErrNoDatabase.
func Open(path string) *Database {
	return &Database{path: path}
}

// Path returns the configured database path.
func (d *Database) Path() string {
	return d.path
}

func (d *Database) load() error {
	d.once.Do(func() {
		if d.path == "" {
			d.err = ErrNoDatabase
			return
		}
		if _, err := os.Stat(d.path); err != nil {
			d.err = fmt.Errorf("OUI database file: %w", err)
			return
		}

		debugLog("Loading OUI database from: %s", d.path)
		db, err := oui.OpenStaticFile(d.path)
		if err != nil {
			d.err = fmt.Errorf("failed to open OUI database: %w", err)
			return
		}
		d.db = db
		debugLog("OUI database loaded from %s", d.path)
	})
	return d.err
}

// Lookup returns the vendor registered for the prefix of mac.
func (d *Database) Lookup(mac net.HardwareAddr) (*VendorInfo, error) {
	if len(mac) < 3 {
		return nil, ErrInvalidMAC
	}
	if err := d.load(); err != nil {
		return nil, err
	}

	entry, err := d.db.Query(mac.String())
	if err != nil {
		if errors.Is(err, oui.ErrNotFound) {
			debugLog("%s: vendor not found in database", mac)
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("OUI lookup failed: %w", err)
	}
	if entry == nil {
		return nil, ErrVendorNotFound
	}

	vendor := &VendorInfo{
		Manufacturer: entry.Manufacturer,
		Prefix:       fmt.Sprintf("%02x:%02x:%02x", mac[0], mac[1], mac[2]),
		Address:      entry.Address,
		Country:      entry.Country,
	}

	debugLog("%s -> %s", mac, vendor.Manufacturer)
	return vendor, nil
}

// LookupString parses mac ("00:11:22:33:44:55", "00-11-22-33-44-55",
// "001122334455" or "0011.2233.4455") and looks it up.
func (d *Database) LookupString(mac string) (*VendorInfo, error) {
	normalized := NormalizeMAC(mac)
	if normalized == "" {
		return nil, ErrInvalidMAC
	}
	hw, err := net.ParseMAC(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMAC, err)
	}
	return d.Lookup(hw)
}

// NormalizeMAC normalizes various MAC address formats to the lowercase
// colon-separated form. Returns empty string if invalid.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(mac)
	mac = strings.NewReplacer("-", "", ":", "", ".", "").Replace(mac)

	if len(mac) != 12 {
		return ""
	}
	for _, c := range mac {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return ""
		}
	}

	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		mac[0:2], mac[2:4], mac[4:6], mac[6:8], mac[8:10], mac[10:12])
}
