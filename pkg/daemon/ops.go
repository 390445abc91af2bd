package daemon

import (
	"fmt"
	"strconv"
	"time"

	"github.com/nodelet/nodelet/pkg/events"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/process"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

// SpawnRequest describes one worker process to start.
type SpawnRequest struct {
	Type           types.WorkerType
	Language       types.Language
	RuntimeEnvHash int
}

// SpawnWorker starts a worker process from the configured command and
// registers its supervisory record. Identity travels through the
// environment; the worker calls back through the API to announce the RPC
// port it bound.
func (d *Daemon) SpawnWorker(req SpawnRequest) (*worker.Worker, error) {
	if len(d.cfg.WorkerCommand) == 0 {
		return nil, fmt.Errorf("no worker_command configured")
	}
	if req.Type == "" {
		req.Type = types.WorkerTypeWorker
	}
	if req.Language == "" {
		req.Language = types.LanguagePython
	}

	token, err := d.nextStartupToken()
	if err != nil {
		return nil, err
	}
	id := types.NewWorkerID()

	port, err := d.alloc.Allocate()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate worker port: %w", err)
	}

	scratchDir, err := d.scratch.Create(id)
	if err != nil {
		d.alloc.Release(port)
		return nil, err
	}

	h, err := process.Start(process.SpawnSpec{
		Command: d.cfg.WorkerCommand,
		Env: []string{
			"NODELET_WORKER_ID=" + id.String(),
			"NODELET_STARTUP_TOKEN=" + strconv.FormatInt(int64(token), 10),
			"NODELET_WORKER_PORT=" + strconv.Itoa(port),
			"NODELET_API_ADDR=" + d.cfg.APIAddr,
			"NODELET_NODE_IP=" + d.cfg.NodeIP,
			"NODELET_SCRATCH_DIR=" + scratchDir,
		},
	})
	if err != nil {
		d.alloc.Release(port)
		d.dropScratch(id)
		return nil, fmt.Errorf("failed to spawn worker: %w", err)
	}

	startedAt, err := process.StartedAt(h.Pid())
	if err != nil {
		// The process table can lag right after spawn.
		startedAt = time.Now()
	}
	rec := &types.SpawnRecord{
		WorkerID:     id,
		PID:          h.Pid(),
		StartupToken: token,
		Type:         req.Type,
		Language:     req.Language,
		StartedAt:    startedAt,
	}
	if err := d.store.PutSpawn(rec); err != nil {
		_ = h.Kill()
		d.alloc.Release(port)
		d.dropScratch(id)
		return nil, fmt.Errorf("failed to persist spawn record: %w", err)
	}

	w := worker.New(worker.Options{
		ID:              id,
		Language:        req.Language,
		Type:            req.Type,
		IP:              d.cfg.NodeIP,
		StartupToken:    token,
		RuntimeEnvHash:  req.RuntimeEnvHash,
		KillGracePeriod: d.cfg.KillGracePeriod(),
		ClientFactory:   d.factory,
		OnKillEscalated: func() {
			d.broker.Publish(events.NewEvent(events.EventKillEscalated, id,
				"graceful kill escalated to force kill"))
		},
	})
	w.SetProcess(h)
	w.SetAssignedPort(port)
	d.table.Add(w)

	metrics.WorkerSpawnsTotal.Inc()
	d.logger.Info().
		Str("worker_id", id.String()).
		Int("pid", h.Pid()).
		Int64("startup_token", int64(token)).
		Int("assigned_port", port).
		Str("type", string(req.Type)).
		Msg("spawned worker")
	d.broker.Publish(events.NewEvent(events.EventWorkerSpawned, id,
		fmt.Sprintf("spawned pid %d", h.Pid())))
	return w, nil
}

// AnnounceWorker handles a worker's boot callback carrying the port its
// RPC server listens on. The caller is remote, so every precondition is
// validated with an error return before the record is touched.
func (d *Daemon) AnnounceWorker(id types.WorkerID, token types.StartupToken, port int) error {
	if port <= 0 {
		return fmt.Errorf("announced port %d is invalid", port)
	}
	w := d.table.GetByToken(token)
	if w == nil {
		return fmt.Errorf("%w %d", ErrUnknownToken, token)
	}
	if w.ID() != id {
		return fmt.Errorf("startup token %d belongs to worker %s, not %s", token, w.ID(), id)
	}
	if w.IsDead() {
		return fmt.Errorf("worker %s: %w", id, ErrWorkerDead)
	}

	w.Connect(port)

	if assigned := w.AssignedPort(); assigned != 0 && assigned != port {
		d.logger.Info().
			Str("worker_id", id.String()).
			Int("assigned_port", assigned).
			Int("announced_port", port).
			Msg("worker announced a different port than assigned")
	}
	d.logger.Info().Str("worker_id", id.String()).Int("port", port).
		Msg("worker announced")
	d.broker.Publish(events.NewEvent(events.EventWorkerAnnounced, id,
		fmt.Sprintf("announced port %d", port)))
	return nil
}

// KillWorker starts the termination protocol for a worker. The record
// stays registered until the supervision loop observes the exit.
func (d *Daemon) KillWorker(id types.WorkerID, force bool) error {
	w := d.table.Get(id)
	if w == nil {
		return fmt.Errorf("%w %s", ErrUnknownWorker, id)
	}
	w.Kill(force)

	mode := metrics.KillModeGraceful
	if force {
		mode = metrics.KillModeForce
	}
	d.broker.Publish(events.NewEvent(events.EventWorkerKilled, id,
		"kill requested ("+mode+")"))
	return nil
}

// DisconnectWorker handles a worker-initiated shutdown notice. The record
// is retired immediately instead of waiting for the supervision loop to
// notice the exit.
func (d *Daemon) DisconnectWorker(id types.WorkerID) error {
	w := d.table.Remove(id)
	if w == nil {
		return fmt.Errorf("%w %s", ErrUnknownWorker, id)
	}
	w.MarkDead()
	if port := w.AssignedPort(); port > 0 {
		d.alloc.Release(port)
	}
	d.dropSpawnRecord(id)
	d.dropScratch(id)

	metrics.WorkerExitsTotal.WithLabelValues(metrics.ExitDisconnected).Inc()
	d.logger.Info().Str("worker_id", id.String()).Msg("worker disconnected")
	d.broker.Publish(events.NewEvent(events.EventWorkerDisconnected, id,
		"worker disconnected"))
	return nil
}

// NotifyGCSRestarted fans the control plane restart notification out to
// every live worker and returns how many were notified. Workers that have
// not announced yet get the notification replayed when they do.
func (d *Daemon) NotifyGCSRestarted() int {
	notified := 0
	for _, w := range d.table.List() {
		if w.IsDead() {
			continue
		}
		w.AsyncNotifyGCSRestart()
		notified++
	}
	d.logger.Info().Int("workers", notified).
		Msg("forwarded control plane restart notification")
	d.broker.Publish(events.NewEvent(events.EventGCSRestarted, types.NilWorkerID,
		fmt.Sprintf("notified %d workers", notified)))
	return notified
}
