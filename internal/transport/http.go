package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// DefaultMaxBodySize caps response bodies at 5MB. Profile pages and API
// responses are far smaller; anything larger is either an error page or
// an attempt to waste our memory.
const DefaultMaxBodySize = 5 * 1024 * 1024

// Client is the production Fetcher. It wraps a single http.Client so
// connection pooling is shared across probe workers.
type Client struct {
	httpClient  *http.Client
	timeout     time.Duration
	maxBodySize int64
	mimic       bool

	// proxyErr defers option-time proxy failures to NewClient's return.
	proxyErr error
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize caps response body reads.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithMimicry sends a randomized realistic browser header profile with
// every request that doesn't explicitly override those headers. Used by
// the moderate and maximum stealth levels.
func WithMimicry(enabled bool) Option {
	return func(c *Client) {
		c.mimic = enabled
	}
}

// WithSOCKS5 routes all connections through a SOCKS5 proxy, typically a
// local Tor daemon. The address must be "host:port".
func WithSOCKS5(address string) Option {
	return func(c *Client) {
		dialer, err := newSOCKS5Dialer(address)
		if err != nil {
			// Leave the direct transport in place; NewClient surfaces
			// the error through validation below.
			c.proxyErr = err
			return
		}
		base := c.httpClient.Transport.(*http.Transport).Clone()
		base.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialContext(ctx, dialer, network, addr)
		}
		// Proxied DNS happens remotely; the local resolver must not see
		// probe targets.
		base.Proxy = nil
		c.httpClient.Transport = base
	}
}

// NewClient creates a Client with sane pooling for probe fan-out.
func NewClient(opts ...Option) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		timeout:     15 * time.Second,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.proxyErr != nil {
		return nil, c.proxyErr
	}
	return c, nil
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, req Request) (*Response, error) {
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if c.mimic {
		for k, v := range MimicHeaders(req.URL) {
			httpReq.Header.Set(k, v)
		}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read side already consumed

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, ErrBodyTooLarge
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
		Elapsed:    time.Since(start),
	}, nil
}

// newSOCKS5Dialer validates the address and builds the dialer.
func newSOCKS5Dialer(address string) (proxy.Dialer, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || strings.TrimSpace(port) == "" {
		return nil, ErrInvalidProxyAddress
	}
	dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}
	return dialer, nil
}

// dialContext adds context support over proxy.Dialer. The x/net/proxy
// interface has no context variant; if the context expires, the dial
// goroutine is abandoned and its connection closed on arrival.
func dialContext(ctx context.Context, dialer proxy.Dialer, network, addr string) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := dialer.Dial(network, addr)
		ch <- result{conn, err}
	}()

	select {
	case r := <-ch:
		return r.conn, r.err
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.conn != nil {
				_ = r.conn.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
