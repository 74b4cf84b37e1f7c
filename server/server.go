// Package server exposes the chat pipeline over HTTP: POST /api/chat,
// GET /healthz, and GET /metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stewardhq/steward"
	"github.com/stewardhq/steward/router"
)

const shutdownGrace = 10 * time.Second

// Server serves the chat API.
type Server struct {
	cfg        Config
	log        zerolog.Logger
	metrics    *metrics
	registry   *prometheus.Registry
	router     *router.Router
	routerOpts []router.Option
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithRouterOptions appends options to the router the server constructs,
// after the defaults. Tests use this to swap the provider factory.
func WithRouterOptions(opts ...router.Option) Option {
	return func(s *Server) { s.routerOpts = append(s.routerOpts, opts...) }
}

// New creates a server for cfg.
func New(cfg Config, opts ...Option) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		log:      zerolog.Nop(),
		metrics:  newMetrics(registry),
		registry: registry,
	}
	for _, opt := range opts {
		opt(s)
	}

	routerOpts := []router.Option{
		router.WithRemote(router.NewRemoteClient(cfg.AgentURL)),
		router.WithLogger(s.log),
		router.WithMetrics(s.metrics.hooks()),
	}
	s.router = router.New(append(routerOpts, s.routerOpts...)...)
	return s
}

// Handler returns the HTTP handler, exposed separately so tests can drive it
// without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.metrics.chatRequests.Inc()

	var req steward.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	resp, err := s.router.Handle(r.Context(), req)
	if err != nil {
		if router.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error().Err(err).Msg("chat request failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.log.Info().
		Dur("elapsed", time.Since(start)).
		Int("toolsExecuted", len(resp.ToolsExecuted)).
		Int("pendingActions", len(resp.PendingActions)).
		Msg("chat request served")

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
