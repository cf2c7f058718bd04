// Package server provides the ops HTTP endpoints of the bot.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chastnik/mm-bot/internal/bot"
	"github.com/chastnik/mm-bot/internal/config"
)

// Server exposes /health and /api/v1/status for monitoring.
type Server struct {
	bot     *bot.Bot
	config  config.ServerConfig
	logger  *zap.Logger
	server  *http.Server
	started time.Time
}

// NewServer creates the ops server.
func NewServer(b *bot.Bot, cfg config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{bot: b, config: cfg, logger: logger, started: time.Now()}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting ops server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sessions := make(map[string]int)
	for state, n := range s.bot.SessionStats() {
		sessions[state.String()] = n
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":       sessions,
		"analyses":       s.bot.Stats(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
