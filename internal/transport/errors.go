package transport

import (
	"context"
	"errors"
	"net"
)

// Transport errors. These all classify as retryable-then-degrade in the
// prober: the request is retried with backoff and finally converted to an
// inconclusive probe result, never surfaced as a run failure.
var (
	// ErrInvalidProxyAddress is returned for a malformed SOCKS5 address.
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected host:port")

	// ErrBodyTooLarge is returned when a response body exceeds the cap.
	ErrBodyTooLarge = errors.New("response body exceeds size limit")

	// ErrTorStartup is returned when the embedded Tor daemon fails to
	// bootstrap within its timeout.
	ErrTorStartup = errors.New("embedded tor daemon failed to start")
)

// Retryable reports whether a fetch error is worth retrying. Timeouts and
// temporary network conditions qualify; context cancellation does not,
// because the caller is shutting the run down.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	// DNS failures and connection resets come through as *net.OpError
	// without implementing Timeout; treat any remaining net error as
	// retryable once.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
