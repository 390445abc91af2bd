package health

import (
	"context"
	"fmt"
	"net"
	"time"
)

// TCPChecker probes a worker's announced RPC port. A worker whose process
// is alive but whose port stopped accepting connections is wedged, which
// the process checker alone cannot see.
type TCPChecker struct {
	// Address is the address to dial (e.g. "10.0.0.5:10007").
	Address string

	// Timeout bounds the connection attempt.
	Timeout time.Duration
}

// NewTCPChecker creates a TCP checker with a 5 second timeout.
func NewTCPChecker(address string) *TCPChecker {
	return &TCPChecker{Address: address, Timeout: 5 * time.Second}
}

// WithTimeout sets the connection timeout.
func (t *TCPChecker) WithTimeout(timeout time.Duration) *TCPChecker {
	t.Timeout = timeout
	return t
}

// Check dials the address once and closes the connection immediately.
func (t *TCPChecker) Check(ctx context.Context) Result {
	start := time.Now()

	dialer := &net.Dialer{Timeout: t.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", t.Address)
	if err != nil {
		return result(start, false, fmt.Sprintf("connection failed: %v", err))
	}
	_ = conn.Close()

	return result(start, true, "port accepting connections")
}

// Type returns the health check type.
func (t *TCPChecker) Type() CheckType {
	return CheckTypeTCP
}
