// Package stream paces telemetry generation and fans the resulting
// packet stream out to any number of concurrently connected sessions.
package stream

import (
	"context"
	"time"

	"github.com/stride-robotics/exosim/internal/timeutil"
)

// Ticker is a pacing floor: Wait suspends the caller until at least one
// interval has elapsed since the previous Wait returned. A late caller is
// not compensated, no catch-up ticks are produced, so throughput degrades
// gracefully under load but never exceeds the configured rate.
type Ticker struct {
	interval time.Duration
	last     time.Time
	clock    timeutil.Clock
}

// NewTicker builds a ticker for the given target rate in Hz. The rate
// must already be validated positive by the caller.
func NewTicker(rateHz float64) *Ticker {
	t := &Ticker{
		interval: time.Duration(float64(time.Second) / rateHz),
		clock:    timeutil.RealClock{},
	}
	t.last = t.clock.Now()
	return t
}

// Interval returns the pacing interval.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Wait blocks until the interval has elapsed since the previous Wait (or
// construction), or until ctx is cancelled. Wait is not safe for
// concurrent use; it belongs to the single producer goroutine.
func (t *Ticker) Wait(ctx context.Context) error {
	now := t.clock.Now()
	if remaining := t.interval - now.Sub(t.last); remaining > 0 {
		timer := t.clock.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C():
		}
	}
	t.last = t.clock.Now()
	return nil
}
