package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scttfrdmn/awsmp/pkg/observability"
)

// Server serves /metrics, /health and /state while a run is in progress.
type Server struct {
	config     observability.MetricsConfig
	recorder   *Recorder
	httpServer *http.Server
	logger     logr.Logger
}

// NewServer creates a Server for registry. /state reports recorder's
// snapshot; recorder may be nil.
func NewServer(config observability.MetricsConfig, registry *Registry, recorder *Recorder, logger logr.Logger) *Server {
	s := &Server{
		config:   config,
		recorder: recorder,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.Handle(config.Path, promhttp.HandlerFor(
		registry.Gatherer(),
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		},
	))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Bind, config.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens in the background. It returns the listen error if one
// happens right away, and stops the server when ctx is done.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Metrics server listening", "addr", s.httpServer.Addr, "path", s.config.Path)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(err, "Metrics server shutdown error")
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

type stateResponse struct {
	Server string    `json:"server"`
	Time   string    `json:"time"`
	Run    *RunState `json:"run,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{
		Server: "awsmp",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}
	if s.recorder != nil {
		state := s.recorder.State()
		resp.Run = &state
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error(err, "Failed to encode state")
	}
}
