package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/nodelet/nodelet/pkg/daemon"
	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/metrics"
)

// Server is the daemon's HTTP API. One listener carries both audiences:
// workers calling back (announce, disconnect) and operators (list, kill,
// restart fan-out), plus the /healthz and /metrics probes.
type Server struct {
	daemon *daemon.Daemon
	router *mux.Router
	srv    *http.Server
	logger zerolog.Logger
}

// NewServer wires the routes for the given daemon.
func NewServer(d *daemon.Daemon) *Server {
	s := &Server{
		daemon: d,
		router: mux.NewRouter(),
		logger: log.WithComponent("api"),
	}
	s.routes()
	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.Use(s.instrument)
	v1.HandleFunc("/workers/announce", s.handleAnnounce).Methods("POST")
	v1.HandleFunc("/workers/lease", s.handleLease).Methods("POST")
	v1.HandleFunc("/workers", s.handleListWorkers).Methods("GET")
	v1.HandleFunc("/workers/{id}/kill", s.handleKillWorker).Methods("POST")
	v1.HandleFunc("/workers/{id}/release", s.handleRelease).Methods("POST")
	v1.HandleFunc("/workers/{id}/disconnect", s.handleDisconnect).Methods("POST")
	v1.HandleFunc("/gcs/restarted", s.handleGCSRestarted).Methods("POST")

	s.router.HandleFunc("/healthz", s.handleHealthz).Methods("GET")
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves the API on addr and blocks until Shutdown.
func (s *Server) Start(addr string) error {
	s.srv.Addr = addr
	s.logger.Info().Str("addr", addr).Msg("api listening")
	if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the listener, draining in-flight requests until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
