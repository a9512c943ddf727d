package network

import (
	"context"
	"errors"
	"net"
	"os"
)

// IsTimeout reports whether err is a deadline expiry rather than an active
// failure such as a refused connection.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
