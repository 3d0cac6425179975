package stream

import (
	"errors"

	"sync"

	"github.com/google/uuid"

	"github.com/stride-robotics/exosim/internal/sim"
)

// ErrHubClosed is returned by Subscribe after the hub has shut down.
var ErrHubClosed = errors.New("stream: hub closed")

// Hub fans a single ordered packet stream out to every subscribed
// session. Publish never blocks on any individual session's send
// progress: a slow consumer loses its oldest queued packets instead of
// delaying the producer or its peers. All sessions observe the same
// packets in the same relative order; a saturated session sees gaps,
// never duplicates or reordering.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	closed   bool
	queueCap int
}

// NewHub creates a hub whose sessions buffer up to queueCap packets.
func NewHub(queueCap int) *Hub {
	if queueCap < 1 {
		queueCap = 1
	}
	return &Hub{
		sessions: make(map[uuid.UUID]*Session),
		queueCap: queueCap,
	}
}

// Subscribe registers a new session and returns it. The session stays
// registered until its Close (or a send failure inside Run) unsubscribes
// it.
func (h *Hub) Subscribe() (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	s := &Session{
		id:    uuid.New(),
		hub:   h,
		queue: make(chan *sim.Packet, h.queueCap),
		done:  make(chan struct{}),
	}
	h.sessions[s.id] = s
	return s, nil
}

// unsubscribe removes a session; safe to call repeatedly and concurrently
// with Publish.
func (h *Hub) unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

// Publish delivers pkt to every currently registered session. The same
// packet pointer is shared read-only across sessions; nobody mutates a
// packet after it leaves the engine.
func (h *Hub) Publish(pkt *sim.Packet) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	for _, s := range sessions {
		s.enqueue(pkt)
	}
}

// Accepting reports whether the hub takes new subscriptions. This is the
// liveness answer for health checks, independent of any one session.
func (h *Hub) Accepting() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return !h.closed
}

// SessionCount returns the number of registered sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Close stops accepting subscriptions and closes every session.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
