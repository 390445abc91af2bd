package worker

import (
	"time"

	"github.com/nodelet/nodelet/pkg/metrics"
)

// Kill terminates the worker's process. The first caller wins and chooses
// the mode; every later call, concurrent or not, returns immediately. With
// force set the process is killed outright. Otherwise the worker gets a
// graceful termination request and a timer that force kills it if it is
// still alive after the grace period.
//
// Kill never blocks on the process exiting. Exit observation belongs to
// whoever holds the process handle's reaper.
func (w *Worker) Kill(force bool) {
	if !w.killing.CompareAndSwap(false, true) {
		return
	}

	w.mu.Lock()
	proc := w.proc
	w.mu.Unlock()
	if proc == nil {
		// Killed before the process was ever bound. The latch alone is
		// enough: the record is dead and the spawn path discards it.
		w.logger.Info().Msg("worker killed before process start")
		return
	}

	if force {
		metrics.WorkerKillsTotal.WithLabelValues(metrics.KillModeForce).Inc()
		w.logger.Info().Int("pid", proc.Pid()).Msg("force killing worker")
		if err := proc.Kill(); err != nil {
			w.logger.Warn().Err(err).Int("pid", proc.Pid()).
				Msg("force kill failed")
		}
		return
	}

	metrics.WorkerKillsTotal.WithLabelValues(metrics.KillModeGraceful).Inc()
	w.logger.Info().Int("pid", proc.Pid()).
		Dur("grace_period", w.grace).
		Msg("requesting graceful worker exit")
	if err := proc.Terminate(); err != nil {
		w.logger.Warn().Err(err).Int("pid", proc.Pid()).
			Msg("graceful termination request failed")
	}

	// The closure holds its own references. If the daemon drops the record
	// before the grace period elapses, the timer still fires and still
	// reaps the process.
	logger := w.logger
	grace := w.grace
	escalated := w.onEscalated
	time.AfterFunc(grace, func() {
		if !proc.IsAlive() {
			return
		}
		logger.Warn().Int("pid", proc.Pid()).
			Dur("grace_period", grace).
			Msg("worker did not exit after grace period, force killing")
		metrics.WorkerKillEscalationsTotal.Inc()
		if escalated != nil {
			escalated()
		}
		if err := proc.Kill(); err != nil {
			logger.Warn().Err(err).Int("pid", proc.Pid()).
				Msg("escalated kill failed")
		}
	})
}

// MarkDead latches the record dead without signaling the process, for
// workers whose exit was observed rather than requested.
func (w *Worker) MarkDead() {
	w.killing.Store(true)
}

// IsDead reports whether termination has been initiated or observed. It
// flips at the moment of the kill decision, not when the OS process
// actually exits.
func (w *Worker) IsDead() bool {
	return w.killing.Load()
}

// MarkBlocked flags the worker as parked on a blocking get or wait, which
// excludes it from the busy-worker count.
func (w *Worker) MarkBlocked() {
	w.blocked.Store(true)
}

// MarkUnblocked clears the blocked flag.
func (w *Worker) MarkUnblocked() {
	w.blocked.Store(false)
}

// IsBlocked reports whether the worker is parked on a blocking call.
func (w *Worker) IsBlocked() bool {
	return w.blocked.Load()
}
