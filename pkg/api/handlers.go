package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nodelet/nodelet/pkg/daemon"
	"github.com/nodelet/nodelet/pkg/types"
)

// AnnounceRequest is the worker boot callback payload.
type AnnounceRequest struct {
	WorkerID     types.WorkerID     `json:"worker_id"`
	StartupToken types.StartupToken `json:"startup_token"`
	Port         int                `json:"port"`
}

// LeaseRequest asks for an idle worker to run one task.
type LeaseRequest struct {
	TaskID        types.TaskID   `json:"task_id"`
	JobID         types.JobID    `json:"job_id"`
	Kind          types.TaskKind `json:"kind,omitempty"`
	Name          string         `json:"name,omitempty"`
	ActorID       types.ActorID  `json:"actor_id,omitempty"`
	Detached      bool           `json:"detached,omitempty"`
	OwnerIP       string         `json:"owner_ip,omitempty"`
	OwnerPort     int            `json:"owner_port,omitempty"`
	OwnerWorkerID types.WorkerID `json:"owner_worker_id,omitempty"`
}

// LeaseResponse carries the granted worker.
type LeaseResponse struct {
	Worker types.WorkerInfo `json:"worker"`
}

// ReleaseRequest returns a leased worker to the idle pool.
type ReleaseRequest struct {
	TaskID types.TaskID `json:"task_id"`
}

// KillRequest selects the kill mode. An empty body means graceful.
type KillRequest struct {
	Force bool `json:"force"`
}

// ListWorkersResponse is the GET /v1/workers payload.
type ListWorkersResponse struct {
	Workers []types.WorkerInfo `json:"workers"`
	Count   int                `json:"count"`
}

// GCSRestartedResponse reports the restart fan-out size.
type GCSRestartedResponse struct {
	Status  string `json:"status"`
	Workers int    `json:"workers"`
}

// HealthResponse is the daemon liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Workers   int       `json:"workers"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDaemonError maps daemon sentinel errors onto status codes. Anything
// unclassified is the caller's fault; the daemon has no internal errors to
// hide behind a 500 here.
func (s *Server) writeDaemonError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, daemon.ErrUnknownWorker), errors.Is(err, daemon.ErrUnknownToken):
		status = http.StatusNotFound
	case errors.Is(err, daemon.ErrWorkerDead):
		status = http.StatusConflict
	case errors.Is(err, daemon.ErrNoIdleWorker):
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	var req AnnounceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.daemon.AnnounceWorker(req.WorkerID, req.StartupToken, req.Port); err != nil {
		s.writeDaemonError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "announced",
		"worker_id": req.WorkerID.String(),
	})
}

func (s *Server) handleLease(w http.ResponseWriter, r *http.Request) {
	var req LeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	wk, err := s.daemon.LeaseWorker(daemon.LeaseRequest{
		Task: types.TaskSpec{
			ID:       req.TaskID,
			JobID:    req.JobID,
			Kind:     req.Kind,
			Name:     req.Name,
			ActorID:  req.ActorID,
			Detached: req.Detached,
		},
		Owner: types.Address{
			IP:       req.OwnerIP,
			Port:     req.OwnerPort,
			WorkerID: req.OwnerWorkerID,
		},
	})
	if err != nil {
		s.writeDaemonError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, LeaseResponse{Worker: wk.Info()})
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	id := types.WorkerID(mux.Vars(r)["id"])

	var req ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.daemon.ReleaseWorker(id, req.TaskID); err != nil {
		s.writeDaemonError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "released",
		"worker_id": id.String(),
	})
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers := s.daemon.ListWorkers()
	s.writeJSON(w, http.StatusOK, ListWorkersResponse{
		Workers: workers,
		Count:   len(workers),
	})
}

func (s *Server) handleKillWorker(w http.ResponseWriter, r *http.Request) {
	id := types.WorkerID(mux.Vars(r)["id"])

	var req KillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.daemon.KillWorker(id, req.Force); err != nil {
		s.writeDaemonError(w, err)
		return
	}
	// The kill runs asynchronously; the record leaves the table once the
	// exit is observed.
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "killing",
		"worker_id": id.String(),
	})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	id := types.WorkerID(mux.Vars(r)["id"])
	if err := s.daemon.DisconnectWorker(id); err != nil {
		s.writeDaemonError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "disconnected",
		"worker_id": id.String(),
	})
}

func (s *Server) handleGCSRestarted(w http.ResponseWriter, r *http.Request) {
	n := s.daemon.NotifyGCSRestarted()
	s.writeJSON(w, http.StatusOK, GCSRestartedResponse{
		Status:  "notified",
		Workers: n,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Workers:   len(s.daemon.ListWorkers()),
	})
}
