package clock

import (
	"context"
	"testing"
	"time"
)

func TestFake_SleepAdvances(t *testing.T) {
	f := NewFake()
	start := f.Now()

	if err := f.Sleep(context.Background(), 15*time.Second); err != nil {
		t.Fatalf("Sleep: %v", err)
	}

	if got := f.Now().Sub(start); got != 15*time.Second {
		t.Errorf("advanced %v, want 15s", got)
	}
}

func TestFake_SleepObservesCancellation(t *testing.T) {
	f := NewFake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.Sleep(ctx, time.Second); err != context.Canceled {
		t.Errorf("Sleep on cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestFake_OnSleepHook(t *testing.T) {
	f := NewFake()
	var seen []time.Duration
	f.OnSleep = func(d time.Duration) { seen = append(seen, d) }

	f.Sleep(context.Background(), 100*time.Millisecond)
	f.Sleep(context.Background(), 300*time.Millisecond)

	if len(seen) != 2 || seen[0] != 100*time.Millisecond || seen[1] != 300*time.Millisecond {
		t.Errorf("OnSleep saw %v", seen)
	}
}

func TestReal_SleepCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Real{}.Sleep(ctx, 5*time.Second)
	if err != context.Canceled {
		t.Errorf("Sleep = %v, want context.Canceled", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly on cancellation")
	}
}
