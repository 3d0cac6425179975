package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stride-robotics/exosim/internal/monitoring"
)

// writeWait bounds how long a single frame write may block before the
// session is considered failed.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The simulator serves local dashboards during development; there is
	// no cross-origin policy to enforce.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsPacketWriter adapts a websocket connection to stream.PacketWriter.
type wsPacketWriter struct {
	conn *websocket.Conn
}

func (w wsPacketWriter) WritePacket(data []byte) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// handleWebSocket upgrades the connection, subscribes a session, and
// streams serialized packets until the client goes away or a send fails.
// Each connection's latency is isolated: a stalled client only loses its
// own packets.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		monitoring.Logf("failed to accept websocket connection from %s: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	sess, err := s.hub.Subscribe()
	if err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		return
	}
	defer sess.Close()

	s.recordAudit(r, "session_connect", sess.ID().String())
	monitoring.Logf("client connected: %s session=%s total=%d",
		r.RemoteAddr, sess.ID(), s.hub.SessionCount())

	// Read pump: inbound frames are discarded; a read error means the
	// client closed or the connection broke, either way the session ends.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sess.Close()
				return
			}
		}
	}()

	if err := sess.Run(r.Context(), wsPacketWriter{conn: conn}); err != nil && r.Context().Err() == nil {
		monitoring.Logf("websocket error for %s: %v", r.RemoteAddr, err)
	}

	s.recordAudit(r, "session_disconnect", sess.ID().String())
	monitoring.Logf("client disconnected: %s session=%s dropped=%d total=%d",
		r.RemoteAddr, sess.ID(), sess.Dropped(), s.hub.SessionCount())
}
