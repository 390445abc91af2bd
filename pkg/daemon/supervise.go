package daemon

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/nodelet/nodelet/pkg/events"
	"github.com/nodelet/nodelet/pkg/health"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/process"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

// pidReuseTolerance bounds the drift allowed between a spawn record's
// start time and the process table's before the PID is presumed recycled
// by an unrelated process.
const pidReuseTolerance = 2 * time.Second

// supervise runs the periodic pass over the worker table until Stop.
func (d *Daemon) supervise() {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.HealthInterval())
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.superviseOnce()
		}
	}
}

// superviseOnce reaps workers whose process has exited and probes the
// announced RPC port of the rest.
func (d *Daemon) superviseOnce() {
	for _, w := range d.table.List() {
		check := health.NewProcessChecker(w.Process()).Check(context.Background())
		if !check.Healthy {
			d.reapExit(w)
			continue
		}
		d.probePort(w)
	}
}

// probePort warns when an announced RPC port stopped accepting
// connections while the process is still alive. Advisory only; the probe
// never kills.
func (d *Daemon) probePort(w *worker.Worker) {
	port := w.Port()
	if port <= 0 || w.IsDead() {
		return
	}
	addr := net.JoinHostPort(w.IP(), strconv.Itoa(port))
	res := health.NewTCPChecker(addr).WithTimeout(time.Second).Check(context.Background())
	if !res.Healthy {
		d.logger.Warn().
			Str("worker_id", w.ID().String()).
			Str("address", addr).
			Str("reason", res.Message).
			Msg("worker port stopped accepting connections")
	}
}

// reapExit retires a worker whose process is gone: table entry, spawn
// record and assigned port are all released, and the exit is published.
// Safe to call twice; the second call finds the table entry gone.
func (d *Daemon) reapExit(w *worker.Worker) {
	id := w.ID()
	if d.table.Remove(id) == nil {
		return
	}

	reason := metrics.ExitCrashed
	if w.IsDead() {
		reason = metrics.ExitKilled
	}
	w.MarkDead()

	if port := w.AssignedPort(); port > 0 {
		d.alloc.Release(port)
	}
	d.dropSpawnRecord(id)
	d.dropScratch(id)

	metrics.WorkerExitsTotal.WithLabelValues(reason).Inc()
	d.logger.Info().
		Str("worker_id", id.String()).
		Int("pid", w.Pid()).
		Str("reason", reason).
		Msg("worker exited")
	d.broker.Publish(events.NewEvent(events.EventWorkerExited, id,
		"process exited ("+reason+")"))
}

// reapExited is one liveness-only sweep, used while draining on shutdown.
func (d *Daemon) reapExited() {
	for _, w := range d.table.List() {
		h := w.Process()
		if h == nil || !h.IsAlive() {
			d.reapExit(w)
		}
	}
}

// reapOrphans kills processes recorded by a previous daemon instance.
// Records whose PID is gone or was recycled are dropped without
// signaling anything.
func (d *Daemon) reapOrphans() error {
	recs, err := d.store.ListSpawns()
	if err != nil {
		return fmt.Errorf("failed to list spawn records: %w", err)
	}
	for _, rec := range recs {
		d.reapOrphan(rec)
	}
	return nil
}

func (d *Daemon) reapOrphan(rec *types.SpawnRecord) {
	logger := d.logger.With().
		Str("worker_id", rec.WorkerID.String()).
		Int("pid", rec.PID).
		Logger()

	startedAt, err := process.StartedAt(rec.PID)
	if err != nil {
		logger.Debug().Msg("orphaned worker already exited")
		d.dropSpawnRecord(rec.WorkerID)
		return
	}

	drift := startedAt.Sub(rec.StartedAt)
	if drift < 0 {
		drift = -drift
	}
	if drift > pidReuseTolerance {
		logger.Info().
			Time("recorded_start", rec.StartedAt).
			Time("actual_start", startedAt).
			Msg("pid was recycled by an unrelated process, dropping record")
		d.dropSpawnRecord(rec.WorkerID)
		return
	}

	h, err := process.Attach(rec.PID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to attach to orphaned worker")
		d.dropSpawnRecord(rec.WorkerID)
		return
	}
	logger.Info().Msg("force killing orphaned worker")
	if err := h.Kill(); err != nil {
		logger.Warn().Err(err).Msg("failed to kill orphaned worker")
	}
	metrics.OrphansReapedTotal.Inc()
	d.broker.Publish(events.NewEvent(events.EventOrphanReaped, rec.WorkerID,
		fmt.Sprintf("killed orphaned pid %d", rec.PID)))
	d.dropSpawnRecord(rec.WorkerID)
}

func (d *Daemon) dropSpawnRecord(id types.WorkerID) {
	if err := d.store.DeleteSpawn(id); err != nil {
		d.logger.Warn().Err(err).Str("worker_id", id.String()).
			Msg("failed to delete spawn record")
	}
}

func (d *Daemon) dropScratch(id types.WorkerID) {
	if err := d.scratch.Remove(id); err != nil {
		d.logger.Warn().Err(err).Str("worker_id", id.String()).
			Msg("failed to remove scratch directory")
	}
}

// sweepScratch removes scratch directories that belong to no registered
// worker. Runs at boot after orphan reaping, when leftover directories
// have no owner coming back for them.
func (d *Daemon) sweepScratch() {
	keep := make(map[types.WorkerID]bool)
	for _, w := range d.table.List() {
		keep[w.ID()] = true
	}
	n, err := d.scratch.Sweep(keep)
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to sweep scratch directories")
		return
	}
	if n > 0 {
		d.logger.Info().Int("directories", n).Msg("removed stale scratch directories")
	}
}
