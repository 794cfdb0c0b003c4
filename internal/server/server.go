// Package server hosts the UI channels over websocket together with health and metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/osmium-toolchains/osmium-cli/internal/domain/config"
	"github.com/osmium-toolchains/osmium-cli/internal/observability/metrics"
	"github.com/osmium-toolchains/osmium-cli/internal/router"
)

// Server is the HTTP host of the UI channels
type Server struct {
	cfg      *config.RuntimeConfig
	router   *router.Router
	bus      *router.Bus
	logger   *slog.Logger
	mux      *chi.Mux
	upgrader websocket.Upgrader

	mu       sync.Mutex
	channels map[*wsChannel]struct{}
}

// NewServer creates a server dispatching channel messages through rt
func NewServer(cfg *config.RuntimeConfig, rt *router.Router, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: rt,
		bus:    rt.Bus(),
		logger: logger.With("component", "Server"),
		mux:    chi.NewRouter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Surfaces are webviews with their own origin schemes; the listener is loopback by default
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		channels: make(map[*wsChannel]struct{}),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) setupMiddleware() {
	s.mux.Use(middleware.RequestID)
	s.mux.Use(requestLogger(s.logger))
	s.mux.Use(metrics.Middleware)
	s.mux.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Get("/readyz", s.handleReady)
	s.mux.Handle("/metrics", metrics.Handler())
	s.mux.Get("/channels/{name:[A-Za-z0-9_-]+}", s.handleChannel)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports which surfaces are attached
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"channels": s.bus.Names(),
	})
}

// handleChannel upgrades the request and serves the named surface until it disconnects.
// A second connection under the same name replaces the first on the bus.
func (s *Server) handleChannel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already replied with an HTTP error
		s.logger.Warn("websocket upgrade failed", "channel", name, "error", err)
		return
	}

	ch := newWSChannel(name, conn, s.cfg.WSRate, s.cfg.WSBurst, s.logger)
	s.track(ch)
	s.bus.Attach(ch)
	s.logger.Info("channel connected", "channel", name, "remote", r.RemoteAddr)

	defer func() {
		s.bus.Detach(ch)
		s.untrack(ch)
		_ = ch.Close()
		s.logger.Info("channel disconnected", "channel", name)
	}()

	ch.readLoop(r.Context(), s.router.Dispatch)
}

func (s *Server) track(ch *wsChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch] = struct{}{}
}

func (s *Server) untrack(ch *wsChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, ch)
}

// closeChannels closes every hijacked connection, which http.Server.Shutdown leaves open
func (s *Server) closeChannels() {
	s.mu.Lock()
	open := make([]*wsChannel, 0, len(s.channels))
	for ch := range s.channels {
		open = append(open, ch)
	}
	s.mu.Unlock()

	for _, ch := range open {
		_ = ch.Close()
	}
}

// Run listens on the configured address and serves until ctx is done
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.RegisterOnShutdown(s.closeChannels)

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
