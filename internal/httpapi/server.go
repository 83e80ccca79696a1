// Package httpapi exposes the duplex endpoint and the management surface.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/echocommand/echod/internal/history"
	"github.com/echocommand/echod/internal/router"
	"github.com/echocommand/echod/internal/session"
)

const maxWSMessageBytes int64 = 4 << 20

type server struct {
	logger      *log.Logger
	router      *router.Router
	sessions    *session.Registry
	recorder    *history.Recorder
	connections atomic.Int64
}

func NewServer(logger *log.Logger, addr string, msgRouter *router.Router, sessions *session.Registry, recorder *history.Recorder) *http.Server {
	h := &server{
		logger:   logger,
		router:   msgRouter,
		sessions: sessions,
		recorder: recorder,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/ws", h.handleWS)
	mux.HandleFunc("/v1/sessions", h.handleSessions)
	mux.HandleFunc("/v1/sessions/", h.handleSessionByID)
	mux.HandleFunc("/v1/history", h.handleHistory)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"active_connections": s.connections.Load(),
		"sessions":           s.sessions.Stats(),
		"executions":         s.recorder.Stats(),
	})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: isWebSocketOriginAllowed}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("ws upgrade failed err=%v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxWSMessageBytes)

	s.connections.Add(1)
	defer s.connections.Add(-1)

	s.router.ServeConn(r.Context(), conn)
}

func (s *server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{
			"sessions": s.sessions.ListActive(),
			"stats":    s.sessions.Stats(),
		})
	case http.MethodPost:
		id := s.sessions.Create(strings.TrimSpace(r.URL.Query().Get("owner")))
		writeJSON(w, http.StatusCreated, map[string]any{"session_id": id})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		sess, ok := s.sessions.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	case http.MethodDelete:
		if !s.sessions.Terminate(id) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"terminated": true})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))

	writeJSON(w, http.StatusOK, map[string]any{
		"records": s.recorder.Query(sessionID, limit),
		"stats":   s.recorder.Stats(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func isWebSocketOriginAllowed(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil || strings.TrimSpace(parsed.Host) == "" {
		return false
	}
	return strings.EqualFold(parsed.Host, r.Host)
}
