// Package transport provides the outbound HTTP capability for probing
// and harvesting.
//
// The Fetcher interface is the seam the rest of the engine depends on;
// tests swap in fakes, production uses the HTTP client here. The client
// supports three routing modes: direct, SOCKS5 proxy, and embedded Tor,
// plus randomized realistic browser header profiles so probe traffic does
// not carry an automation fingerprint.
package transport
