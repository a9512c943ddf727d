package network

import (
	"context"
	"fmt"
	"net"
	"os"
	"testing"
)

func TestIsTimeout_Wrapped(t *testing.T) {
	err := fmt.Errorf("query: %w", &net.OpError{Op: "read", Net: "udp", Err: os.ErrDeadlineExceeded})
	if !IsTimeout(err) {
		t.Errorf("Expected wrapped deadline error to be a timeout: %v", err)
	}
	if !IsTimeout(fmt.Errorf("ctx: %w", context.DeadlineExceeded)) {
		t.Error("Expected context.DeadlineExceeded to be a timeout")
	}
	if IsTimeout(context.Canceled) {
		t.Error("context.Canceled is not a timeout")
	}
}
