package main

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/heightview/internal/presence"
)

// Server serves height data and the presence hub.
type Server struct {
	dataDir string
	hub     *presence.Hub
	log     *zap.Logger
}

// NewServer creates a server for the given static directory.
func NewServer(dataDir string, hub *presence.Hub, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{dataDir: dataDir, hub: hub, log: log}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /ws", s.hub)
	mux.HandleFunc("GET /api/clients", s.handleClients)
	mux.Handle("GET /", binaryContentType(http.FileServer(http.Dir(s.dataDir))))

	return s.logRequests(mux)
}

type clientJSON struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Location  string    `json:"location,omitempty"`
	Connected time.Time `json:"connected"`
}

func (s *Server) handleClients(w http.ResponseWriter, _ *http.Request) {
	clients := s.hub.Clients()
	out := make([]clientJSON, len(clients))
	for i, c := range clients {
		out[i] = clientJSON{
			ID:        c.ID,
			IP:        c.IP,
			UserAgent: c.UserAgent,
			Location:  c.Location,
			Connected: c.Connected,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"count":   len(out),
		"clients": out,
	}); err != nil {
		s.log.Warn("writing client list", zap.Error(err))
	}
}

// binaryContentType marks height data files as raw bytes.
func binaryContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(path.Ext(r.URL.Path), ".bin") {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the hijacker for websocket upgrades.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Websocket upgrades need the raw writer to hijack
		if r.URL.Path == "/ws" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
