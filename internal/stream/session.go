package stream

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/stride-robotics/exosim/internal/monitoring"
	"github.com/stride-robotics/exosim/internal/sim"
)

// PacketWriter sends one serialized telemetry frame to a peer. The
// transport (WebSocket, SSE, a test buffer) sits behind this interface so
// the session owns serialization and backpressure without knowing the
// framing.
type PacketWriter interface {
	WritePacket(data []byte) error
}

// Session is one observer's delivery queue plus send loop. Backpressure
// policy is drop-oldest: when the bounded queue is full on delivery, the
// oldest queued packet is discarded so the stream stays live rather than
// stale.
type Session struct {
	id      uuid.UUID
	hub     *Hub
	queue   chan *sim.Packet
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Dropped returns how many packets this session has discarded under
// backpressure.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} { return s.done }

// enqueue delivers a packet without ever blocking the publisher. Only the
// hub's single publish loop calls this, so the evict-retry cycle cannot
// spin against another producer.
func (s *Session) enqueue(pkt *sim.Packet) {
	for {
		select {
		case <-s.done:
			return
		case s.queue <- pkt:
			return
		default:
		}
		// Queue full: evict the oldest entry and try again.
		select {
		case <-s.queue:
			s.dropped.Add(1)
		default:
		}
	}
}

// Run serializes queued packets and writes them to w until the context is
// cancelled, the session is closed, or a write fails. A packet that fails
// to encode is dropped for this session only; a write failure closes the
// session and unsubscribes it from the hub.
func (s *Session) Run(ctx context.Context, w PacketWriter) error {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case pkt := <-s.queue:
			data, err := json.Marshal(pkt)
			if err != nil {
				monitoring.Logf("session %s: failed to encode packet %d: %v", s.id, pkt.Sequence, err)
				continue
			}
			if err := w.WritePacket(data); err != nil {
				return err
			}
		}
	}
}

// Close unregisters the session from the hub and releases its queue.
// Idempotent and safe to call concurrently with Publish.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.hub.unsubscribe(s.id)
	})
}
