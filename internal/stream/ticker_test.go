package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stride-robotics/exosim/internal/timeutil"
)

// Five waits at 200 Hz cannot return in less than five intervals; the
// ticker is a floor, never an accelerator.
func TestTickerPacesFloor(t *testing.T) {
	tk := NewTicker(200)
	start := time.Now()
	for i := 0; i < 5; i++ {
		if err := tk.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	// Allow a little slop for coarse timers.
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("five waits finished in %v, want >= 20ms", elapsed)
	}
}

// After a stall the ticker fires exactly once immediately and then owes a
// full interval again: no burst of catch-up ticks.
func TestTickerNoCatchUp(t *testing.T) {
	start := time.Unix(1700000000, 0)
	clk := timeutil.NewMockClock(start)
	tk := &Ticker{
		interval: 100 * time.Millisecond,
		clock:    clk,
		last:     start.Add(-time.Second), // pretend the producer stalled
	}

	if err := tk.Wait(context.Background()); err != nil {
		t.Fatalf("Wait after stall: %v", err)
	}
	if !tk.last.Equal(start) {
		t.Errorf("last = %v after immediate tick, want %v", tk.last, start)
	}

	// The next wait blocks for a full interval; with an already-cancelled
	// context it cannot complete, proving there is no second free tick.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tk.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
}

func TestTickerWaitsFullInterval(t *testing.T) {
	start := time.Unix(1700000000, 0)
	clk := timeutil.NewMockClock(start)
	tk := &Ticker{interval: 50 * time.Millisecond, clock: clk, last: start}

	done := make(chan error, 1)
	go func() { done <- tk.Wait(context.Background()) }()

	// Let the wait reach its timer before touching the clock.
	for clk.PendingTimers() == 0 {
		time.Sleep(time.Millisecond)
	}

	clk.Advance(49 * time.Millisecond)
	select {
	case err := <-done:
		t.Fatalf("Wait returned 1ms early (err=%v)", err)
	case <-time.After(20 * time.Millisecond):
	}

	clk.Advance(time.Millisecond)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait never returned after a full interval elapsed")
	}
}

func TestTickerCancel(t *testing.T) {
	tk := NewTicker(0.1) // 10 s interval: only cancellation can end the wait
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := tk.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("cancelled wait took %v", elapsed)
	}
}

func TestTickerInterval(t *testing.T) {
	if got := NewTicker(10).Interval(); got != 100*time.Millisecond {
		t.Errorf("Interval() = %v, want 100ms", got)
	}
	if got := NewTicker(50).Interval(); got != 20*time.Millisecond {
		t.Errorf("Interval() = %v, want 20ms", got)
	}
}
