// Package ntp fetches wall-clock time from a remote (S)NTP server.
// The protocol exchange is delegated to github.com/beevik/ntp.
package ntp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/ntp"

	"github.com/marcuoli/go-netdiag/pkg/netdiag/network"
)

const (
	// DefaultPort is the NTP port.
	DefaultPort = 123
	// DefaultTimeout is the default timeout for a query.
	DefaultTimeout = 5 * time.Second
)

// ErrInvalidServer is returned for a server string that cannot be parsed.
var ErrInvalidServer = errors.New("invalid time server")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from NTP queries.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Querier returns the current time according to a server.
type Querier interface {
	Query(ctx context.Context, server string, timeout time.Duration) (time.Time, error)
}

// QueryFn matches ntp.QueryWithOptions.
type QueryFn func(address string, opts ntp.QueryOptions) (*ntp.Response, error)

// Client performs single NTP queries.
type Client struct {
	// Version is the NTP protocol version sent. Zero means the library default.
	Version int
	// QueryWithOptions defaults to ntp.QueryWithOptions.
	QueryWithOptions QueryFn
}

// NewClient creates an NTP client with defaults.
func NewClient() *Client {
	return &Client{QueryWithOptions: ntp.QueryWithOptions}
}

// Query sends one request to server ("host", "host:port", "ipv6" or
// "[ipv6]:port") and validates the response. The returned error satisfies
// network.IsTimeout when no response arrived in time.
func (c *Client) Query(ctx context.Context, server string, timeout time.Duration) (time.Time, error) {
	host, port, err := network.SplitServer(server, DefaultPort)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidServer, server, err)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	address := network.JoinServer(host, port)

	query := c.QueryWithOptions
	if query == nil {
		query = ntp.QueryWithOptions
	}
	opts := ntp.QueryOptions{Timeout: timeout, Version: c.Version}

	type ntpResponse struct {
		resp *ntp.Response
		err  error
	}
	responseChan := make(chan ntpResponse, 1)

	go func() {
		resp, err := query(address, opts)
		responseChan <- ntpResponse{resp: resp, err: err}
	}()

	// The query itself is bounded by opts.Timeout.
	select {
	case <-ctx.Done():
		debugLog("%s: context done", address)
		return time.Time{}, ctx.Err()
	case r := <-responseChan:
		if r.err != nil {
			debugLog("%s: query failed: %v", address, r.err)
			return time.Time{}, fmt.Errorf("query %s: %w", address, r.err)
		}
		if err := r.resp.Validate(); err != nil {
			debugLog("%s: invalid response: %v", address, err)
			return time.Time{}, fmt.Errorf("response from %s: %w", address, err)
		}
		debugLog("%s -> %s (stratum %d, rtt %s)", address, r.resp.Time.UTC().Format(time.RFC3339), r.resp.Stratum, r.resp.RTT)
		return r.resp.Time, nil
	}
}
