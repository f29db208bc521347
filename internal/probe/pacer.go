package probe

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outbound requests per remote service and enforces the
// per-service session budget. It is shared by all probe workers, so every
// method is safe for concurrent use.
//
// Spacing has two parts. A rate.Limiter per service enforces the minimum
// interval; on top of that each acquisition sleeps a uniform jitter of up
// to jitterFraction of the interval, except for a small burst probability
// where the jitter is skipped. The result is irregular spacing that does
// not look like a fixed-period scanner.
type Pacer struct {
	mu       sync.Mutex
	services map[string]*serviceState
	rng      *rand.Rand

	minInterval      time.Duration
	jitterFraction   float64
	burstProbability float64
	budget           int
	cooldown         time.Duration
}

// serviceState is the pacing state for one remote service.
type serviceState struct {
	limiter   *rate.Limiter
	interval  time.Duration
	used      int
	coolUntil time.Time
}

// NewPacer creates a Pacer. minInterval is the default spacing; a service
// registered with RegisterInterval can override it. budget <= 0 disables
// the session budget.
func NewPacer(minInterval time.Duration, jitterFraction, burstProbability float64, budget int, cooldown time.Duration) *Pacer {
	return &Pacer{
		services:         make(map[string]*serviceState),
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		minInterval:      minInterval,
		jitterFraction:   jitterFraction,
		burstProbability: burstProbability,
		budget:           budget,
		cooldown:         cooldown,
	}
}

// RegisterInterval overrides the minimum interval for one service.
// Zero or negative intervals leave the default in place.
func (p *Pacer) RegisterInterval(service string, interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stateLocked(service)
	s.interval = interval
	s.limiter.SetLimit(rate.Every(interval))
}

// stateLocked returns the state for a service, creating it on first use.
// The first request on a fresh limiter passes immediately; spacing applies
// from the second request on.
func (p *Pacer) stateLocked(service string) *serviceState {
	s, ok := p.services[service]
	if !ok {
		interval := p.minInterval
		s = &serviceState{
			limiter:  rate.NewLimiter(rate.Every(interval), 1),
			interval: interval,
		}
		p.services[service] = s
	}
	return s
}

// Acquire blocks until the caller may issue one request to the service.
// It returns ErrSessionBudgetExhausted when the service's budget is spent
// and the cooldown has not elapsed, or the context error on cancellation.
func (p *Pacer) Acquire(ctx context.Context, service string) error {
	p.mu.Lock()
	s := p.stateLocked(service)

	now := time.Now()
	if !s.coolUntil.IsZero() {
		if now.Before(s.coolUntil) {
			p.mu.Unlock()
			return ErrSessionBudgetExhausted
		}
		// Cooldown elapsed: the session budget resets.
		s.coolUntil = time.Time{}
		s.used = 0
	}
	if p.budget > 0 {
		s.used++
		if s.used >= p.budget {
			s.coolUntil = now.Add(p.cooldown)
		}
	}

	jitter := p.jitterLocked(s.interval)
	limiter := s.limiter
	p.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return err
	}
	return sleepCtx(ctx, jitter)
}

// jitterLocked picks the extra delay for one acquisition. Callers must
// hold p.mu (for the rng).
func (p *Pacer) jitterLocked(interval time.Duration) time.Duration {
	if p.jitterFraction <= 0 || interval <= 0 {
		return 0
	}
	if p.burstProbability > 0 && p.rng.Float64() < p.burstProbability {
		return 0
	}
	return time.Duration(p.rng.Float64() * p.jitterFraction * float64(interval))
}

// Remaining reports how many requests the service may still issue in this
// session, or -1 when budgets are disabled.
func (p *Pacer) Remaining(service string) int {
	if p.budget <= 0 {
		return -1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stateLocked(service)
	if !s.coolUntil.IsZero() && time.Now().Before(s.coolUntil) {
		return 0
	}
	left := p.budget - s.used
	if left < 0 {
		return 0
	}
	return left
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
