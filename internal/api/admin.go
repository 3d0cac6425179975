package api

import (
	"fmt"
	"net/http"

	"tailscale.com/tsweb"

	"github.com/stride-robotics/exosim/internal/httputil"
)

// AttachAdminRoutes mounts the debugging endpoints under /debug/. These
// are served only in dev mode; in production the debug mux is reachable
// only over localhost or the tailnet.
func (s *Server) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	// Live tail of the telemetry stream as Server-Sent Events. Uses a
	// regular hub session, so it follows the same ordering and
	// backpressure rules as a WebSocket observer.
	debug.HandleSilent("tail", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

		sess, err := s.hub.Subscribe()
		if err != nil {
			http.Error(w, "Hub closed", http.StatusServiceUnavailable)
			return
		}
		defer sess.Close()

		// Send initial ping to establish connection
		w.Write([]byte(": ping\n\n"))
		flusher.Flush()

		sess.Run(r.Context(), ssePacketWriter{w: w, flusher: flusher})
	}))

	debug.Handle("stream-stats", "streaming hub statistics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"accepting":   s.hub.Accepting(),
			"connections": s.hub.SessionCount(),
			"mode":        string(s.engine.Mode()),
			"rate_hz":     s.engine.Rate(),
		})
	}))
}

// ssePacketWriter frames packets as SSE data lines.
type ssePacketWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (p ssePacketWriter) WritePacket(data []byte) error {
	if _, err := fmt.Fprintf(p.w, "data: %s\n\n", data); err != nil {
		return err
	}
	p.flusher.Flush()
	return nil
}
