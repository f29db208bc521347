package probe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPacerMinimumInterval(t *testing.T) {
	t.Parallel()

	const (
		probes   = 4
		interval = 30 * time.Millisecond
	)
	// Jitter off so the lower bound is exact.
	p := NewPacer(interval, 0, 0, 0, 0)

	start := time.Now()
	for i := 0; i < probes; i++ {
		if err := p.Acquire(context.Background(), "forge"); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	if want := time.Duration(probes-1) * interval; elapsed < want {
		t.Errorf("%d probes took %v, want at least %v", probes, elapsed, want)
	}
}

func TestPacerPlatformsDoNotShareIntervals(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Hour, 0, 0, 0, 0)

	// First acquisition per service passes immediately even with a huge
	// interval; a shared limiter would block the second service.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Acquire(ctx, "forge"); err != nil {
		t.Fatalf("Acquire(forge) error = %v", err)
	}
	if err := p.Acquire(ctx, "tracker"); err != nil {
		t.Fatalf("Acquire(tracker) error = %v", err)
	}
}

func TestPacerSessionBudget(t *testing.T) {
	t.Parallel()

	t.Run("exhaustion", func(t *testing.T) {
		t.Parallel()
		p := NewPacer(time.Millisecond, 0, 0, 3, time.Hour)

		for i := 0; i < 3; i++ {
			if err := p.Acquire(context.Background(), "forge"); err != nil {
				t.Fatalf("Acquire() #%d error = %v", i+1, err)
			}
		}
		if err := p.Acquire(context.Background(), "forge"); !errors.Is(err, ErrSessionBudgetExhausted) {
			t.Errorf("Acquire() after budget error = %v, want ErrSessionBudgetExhausted", err)
		}

		// Other services keep their own budgets.
		if err := p.Acquire(context.Background(), "tracker"); err != nil {
			t.Errorf("Acquire(tracker) error = %v", err)
		}
	})

	t.Run("cooldown resets budget", func(t *testing.T) {
		t.Parallel()
		p := NewPacer(time.Millisecond, 0, 0, 2, 20*time.Millisecond)

		for i := 0; i < 2; i++ {
			if err := p.Acquire(context.Background(), "forge"); err != nil {
				t.Fatalf("Acquire() error = %v", err)
			}
		}
		if err := p.Acquire(context.Background(), "forge"); !errors.Is(err, ErrSessionBudgetExhausted) {
			t.Fatalf("expected budget exhaustion, got %v", err)
		}

		time.Sleep(30 * time.Millisecond)
		if err := p.Acquire(context.Background(), "forge"); err != nil {
			t.Errorf("Acquire() after cooldown error = %v", err)
		}
	})

	t.Run("remaining", func(t *testing.T) {
		t.Parallel()
		p := NewPacer(time.Millisecond, 0, 0, 5, time.Hour)
		if got := p.Remaining("forge"); got != 5 {
			t.Errorf("Remaining() = %d, want 5", got)
		}
		_ = p.Acquire(context.Background(), "forge")
		if got := p.Remaining("forge"); got != 4 {
			t.Errorf("Remaining() = %d, want 4", got)
		}
	})
}

func TestPacerCancellation(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Hour, 0, 0, 0, 0)
	if err := p.Acquire(context.Background(), "forge"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	// Second acquisition would wait an hour; cancellation must cut it short.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.Acquire(ctx, "forge"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestPacerRegisterInterval(t *testing.T) {
	t.Parallel()

	p := NewPacer(time.Millisecond, 0, 0, 0, 0)
	p.RegisterInterval("slow", 40*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := p.Acquire(context.Background(), "slow"); err != nil {
			t.Fatalf("Acquire() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 probes with 40ms override took %v, want at least 80ms", elapsed)
	}
}
