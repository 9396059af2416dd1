// Package server exposes the HTTP API: authentication, transcript upload,
// analytics, report export, and feedback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/chatflowhq/chatflow/internal/config"
	"github.com/chatflowhq/chatflow/internal/database"
)

// Server is the HTTP front end. All analytics state lives in the session
// registry; the store only holds accounts and feedback.
type Server struct {
	cfg      *config.Config
	store    database.Store
	sessions *Sessions
	logger   *slog.Logger
	http     *http.Server
}

// New creates the HTTP server and registers all routes.
func New(cfg *config.Config, store database.Store, sessions *Sessions, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		logger:   logger.With("component", "server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.requireAuth(s.handleLogout))
	mux.HandleFunc("POST /api/upload", s.requireAuth(s.handleUpload))
	mux.HandleFunc("GET /api/users", s.requireAuth(s.handleUsers))
	mux.HandleFunc("GET /api/analysis", s.requireAuth(s.handleAnalysis))
	mux.HandleFunc("GET /api/export/excel", s.requireAuth(s.handleExportExcel))
	mux.HandleFunc("GET /api/export/pdf", s.requireAuth(s.handleExportPDF))
	mux.HandleFunc("POST /api/feedback", s.requireAuth(s.handleSaveFeedback))
	mux.HandleFunc("GET /api/feedback", s.requireAuth(s.handleListFeedback))

	s.http = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start runs the HTTP server until it is shut down. It returns nil on
// graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.HTTPAddr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// tokenKey carries the bearer token through the request context.
type contextKey string

const tokenKey contextKey = "session_token"

// requireAuth resolves the bearer token to a live session before calling
// next. The request context carries the token for handlers that need the
// session state.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, ok := s.sessions.lookup(token); !ok {
			s.writeError(w, http.StatusUnauthorized, "session expired or unknown")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), tokenKey, token)))
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func requestToken(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey).(string)
	return token
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
