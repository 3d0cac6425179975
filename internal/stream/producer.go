package stream

import (
	"context"

	"github.com/stride-robotics/exosim/internal/sim"
)

// Run drives the engine at the ticker's pace and publishes every packet
// to the hub until the context is cancelled. This is the single producer
// goroutine; no session ever calls into the engine directly.
func Run(ctx context.Context, ticker *Ticker, engine *sim.Engine, hub *Hub) error {
	for {
		if err := ticker.Wait(ctx); err != nil {
			return err
		}
		hub.Publish(engine.Tick())
	}
}
