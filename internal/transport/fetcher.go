package transport

import (
	"context"
	"net/http"
	"time"
)

// Request describes one outbound fetch.
type Request struct {
	// URL is the absolute URL to fetch.
	URL string

	// Headers are extra headers merged over the client's header profile.
	Headers map[string]string

	// Timeout overrides the client's default per-request timeout when
	// positive.
	Timeout time.Duration
}

// Response is the outcome of a completed fetch. A non-2xx status is a
// valid response, not an error; errors are reserved for transport-level
// failures (DNS, TLS, timeout, oversized or unreadable bodies).
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the response body, capped at the client's body size limit.
	Body []byte

	// Headers are the response headers.
	Headers http.Header

	// Elapsed is the wall-clock duration of the round trip.
	Elapsed time.Duration
}

// Fetcher is the outbound HTTP capability consumed by the prober and
// harvester. Implementations must be safe for concurrent use.
type Fetcher interface {
	// Fetch performs one request. The context bounds the whole call in
	// addition to the per-request timeout.
	Fetch(ctx context.Context, req Request) (*Response, error)
}
