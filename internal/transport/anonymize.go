package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// AnonymizedRoute manages an embedded Tor daemon for maximum-footprint-
// sensitive investigations. When enabled, every probe and harvest request
// leaves through the Tor network instead of the operator's own address.
//
// Bootstrap takes one to three minutes: the daemon has to fetch directory
// information and build circuits before the SOCKS listener is usable.
type AnonymizedRoute struct {
	process        *tornago.TorProcess
	socksAddr      string
	startupTimeout time.Duration
}

// AnonymizedRouteOption configures an AnonymizedRoute.
type AnonymizedRouteOption func(*AnonymizedRoute)

// WithStartupTimeout bounds the Tor bootstrap wait.
func WithStartupTimeout(d time.Duration) AnonymizedRouteOption {
	return func(r *AnonymizedRoute) {
		if d > 0 {
			r.startupTimeout = d
		}
	}
}

// NewAnonymizedRoute creates an unstarted route. Call Start to launch the
// daemon.
func NewAnonymizedRoute(opts ...AnonymizedRouteOption) *AnonymizedRoute {
	r := &AnonymizedRoute{startupTimeout: 3 * time.Minute}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the embedded Tor daemon and waits for bootstrap.
func (r *AnonymizedRoute) Start(ctx context.Context) error {
	launchCfg, err := tornago.NewTorLaunchConfig(
		// ":0" lets the OS pick free ports, so parallel investigations
		// on one machine don't collide.
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(r.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTorStartup, err)
	}

	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTorStartup, err)
	}

	select {
	case <-ctx.Done():
		_ = process.Stop() //nolint:errcheck // best effort cleanup
		return ctx.Err()
	default:
	}

	r.process = process
	r.socksAddr = process.SocksAddr()
	return nil
}

// Stop shuts the daemon down. Safe to call repeatedly or unstarted.
func (r *AnonymizedRoute) Stop() error {
	if r.process == nil {
		return nil
	}
	err := r.process.Stop()
	r.process = nil
	return err
}

// SocksAddr returns the running daemon's SOCKS5 address, empty when the
// route is not started. Pass it to NewClient via WithSOCKS5.
func (r *AnonymizedRoute) SocksAddr() string {
	return r.socksAddr
}

// Running reports whether the daemon is up.
func (r *AnonymizedRoute) Running() bool {
	return r.process != nil
}
