// Package clock abstracts time for the replay engine. Every wait in the
// system (resolver poll ticks, settle delays, per-keystroke pauses) goes
// through a Clock so tests can fast-forward deterministically instead of
// sleeping.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock is the timer capability injected into the resolver, the step
// executor, and the session controller.
type Clock interface {
	Now() time.Time
	// Sleep suspends for d or until ctx is cancelled, whichever comes
	// first. It returns ctx.Err() on cancellation, nil otherwise.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the wall-clock implementation.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		// Still observe cancellation at zero-length waits.
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fake is a manually advanced clock for tests. Sleep returns immediately and
// advances the fake time by the requested duration, so polling loops run at
// full speed while observing a consistent virtual timeline.
type Fake struct {
	mu  sync.Mutex
	now time.Time

	// OnSleep, if set, is invoked (outside the lock) with each requested
	// sleep duration. Tests use it to mutate state "while" time passes.
	OnSleep func(d time.Duration)
}

// NewFake returns a Fake starting at a fixed reference instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	if d > 0 {
		f.now = f.now.Add(d)
	}
	f.mu.Unlock()
	if f.OnSleep != nil {
		f.OnSleep(d)
	}
	return nil
}

// Advance moves the fake time forward without a sleep call.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
