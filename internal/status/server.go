// Package status exposes a small HTTP surface for long extraction runs:
// a liveness endpoint and a snapshot of the current run.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/syncwell/personio-extract/internal/extract"
)

// Source supplies the run snapshot served at /status.
type Source interface {
	Snapshot() extract.Snapshot
}

// Server serves /healthz and /status.
type Server struct {
	mux    *http.ServeMux
	server *http.Server
}

// Compile-time check that Server implements http.Handler
var _ http.Handler = (*Server)(nil)

// New creates a status server reading run state from src.
func New(src Source) *Server {
	logger := slog.Default()

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", applyMiddlewares(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(r.Context(), w, map[string]string{"status": "ok"}, http.StatusOK)
		}),
		Logging(logger),
		Recovery,
	))
	mux.Handle("GET /status", applyMiddlewares(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(r.Context(), w, src.Snapshot(), http.StatusOK)
		}),
		Logging(logger),
		Recovery,
	))

	return &Server{mux: mux}
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Start starts the HTTP server in the background and returns immediately.
// Startup errors (port in use, permission denied) are returned directly;
// runtime errors are delivered on the returned channel. The caller is
// responsible for calling Shutdown.
func (s *Server) Start(ctx context.Context, address string) (<-chan error, error) {
	// Listener is created synchronously so bind failures surface here.
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	s.server = &http.Server{
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		err := s.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	if err := s.server.Shutdown(ctx); err != nil {
		_ = s.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
