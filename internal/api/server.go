// Package api exposes the HTTP surface of the simulator: the telemetry
// WebSocket, the health check, and the operator fault-injection
// endpoints.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/stride-robotics/exosim/internal/audit"
	"github.com/stride-robotics/exosim/internal/config"
	"github.com/stride-robotics/exosim/internal/httputil"
	"github.com/stride-robotics/exosim/internal/monitoring"
	"github.com/stride-robotics/exosim/internal/sim"
	"github.com/stride-robotics/exosim/internal/stream"
	"github.com/stride-robotics/exosim/internal/version"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	engine *sim.Engine
	hub    *stream.Hub
	audit  *audit.DB
	cfg    *config.Config
}

// NewServer wires the HTTP surface to the engine, hub, and audit log.
// audit may be nil, in which case operator actions are only logged.
func NewServer(engine *sim.Engine, hub *stream.Hub, auditDB *audit.DB, cfg *config.Config) *Server {
	return &Server{
		engine: engine,
		hub:    hub,
		audit:  auditDB,
		cfg:    cfg,
	}
}

// ServeMux returns the full route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/audit", s.listAudit)
	mux.HandleFunc("/api/motors/status", s.setMotorStatus)
	mux.HandleFunc("/api/estop", s.setEmergencyStop)
	mux.HandleFunc("/api/errors", s.handleErrors)
	mux.HandleFunc("/api/reset", s.resetEngine)
	return mux
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	default:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	}
}

// LoggingMiddleware logs method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// recordAudit best-effort records an operator action; failures are
// logged, never surfaced to the simulation.
func (s *Server) recordAudit(r *http.Request, action, detail string) {
	actor := "system"
	if r != nil {
		actor = r.RemoteAddr
	}
	if s.audit == nil {
		monitoring.Logf("audit: %s %s %s", actor, action, detail)
		return
	}
	if err := s.audit.RecordAction(actor, action, detail); err != nil {
		monitoring.Logf("failed to record audit entry %s/%s: %v", action, detail, err)
	}
}

// handleHealth answers the liveness query: whether the streaming
// subsystem accepts connections, independent of any individual session.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.hub.Accepting() {
		status = "unavailable"
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"service":     "exoskeleton-telemetry",
		"version":     version.Version,
		"accepting":   s.hub.Accepting(),
		"connections": s.hub.SessionCount(),
	})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"mode":       string(s.engine.Mode()),
		"rate_hz":    s.engine.Rate(),
		"listen":     s.cfg.Listen,
		"queue_size": s.cfg.QueueSize,
	})
}

func (s *Server) listAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.audit == nil {
		httputil.NotFound(w, "audit log disabled")
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "Invalid 'limit' parameter")
			return
		}
		limit = parsed
	}
	entries, err := s.audit.RecentActions(limit)
	if err != nil {
		httputil.InternalServerError(w, "failed to read audit log")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// setMotorStatus injects a motor fault: {"joint": "left_hip", "status":
// "warning"}. An unknown joint or status is rejected without touching
// the simulation.
func (s *Server) setMotorStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		Joint  string `json:"joint"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body")
		return
	}
	joint, err := sim.ParseJoint(req.Joint)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	status, err := sim.ParseMotorStatus(req.Status)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := s.engine.SetMotorStatus(joint, status); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	s.recordAudit(r, "set_motor_status", fmt.Sprintf("%s=%s", joint, status))
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"joint": req.Joint, "status": req.Status})
}

// setEmergencyStop toggles the emergency stop: {"active": true}.
func (s *Server) setEmergencyStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body")
		return
	}
	s.engine.SetEmergencyStop(req.Active)
	s.recordAudit(r, "set_emergency_stop", strconv.FormatBool(req.Active))
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// handleErrors appends (POST) or clears (DELETE) operator-visible error
// messages.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
			httputil.BadRequest(w, "missing error message")
			return
		}
		s.engine.AddErrorMessage(req.Message)
		s.recordAudit(r, "add_error_message", req.Message)
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": req.Message})
	case http.MethodDelete:
		s.engine.ClearErrorMessages()
		s.recordAudit(r, "clear_error_messages", "")
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		httputil.MethodNotAllowed(w)
	}
}

// resetEngine restores the simulation to its initial state.
func (s *Server) resetEngine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	s.engine.Reset()
	s.recordAudit(r, "reset", "")
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
