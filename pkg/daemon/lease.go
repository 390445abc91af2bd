package daemon

import (
	"fmt"
	"sort"

	"github.com/nodelet/nodelet/pkg/events"
	"github.com/nodelet/nodelet/pkg/metrics"
	"github.com/nodelet/nodelet/pkg/types"
	"github.com/nodelet/nodelet/pkg/worker"
)

// LeaseRequest asks for an idle worker to execute one task.
type LeaseRequest struct {
	Task  types.TaskSpec
	Owner types.Address
}

// LeaseWorker picks an idle announced worker and binds the task to it. The
// worker stays leased until ReleaseWorker, or forever if the task creates
// an actor. Requests arrive from remote owners, so every precondition is
// validated with an error return.
func (d *Daemon) LeaseWorker(req LeaseRequest) (*worker.Worker, error) {
	spec := req.Task
	if spec.Kind == "" {
		spec.Kind = types.TaskKindNormal
	}
	if spec.ID.IsNil() {
		return nil, fmt.Errorf("lease request carries no task ID")
	}
	if spec.JobID.IsNil() {
		return nil, fmt.Errorf("task %s carries no job ID", spec.ID)
	}
	if spec.IsActorCreationTask() && spec.ActorID.IsNil() {
		return nil, fmt.Errorf("actor creation task %s carries no actor ID", spec.ID)
	}

	d.leaseMu.Lock()
	defer d.leaseMu.Unlock()

	w := d.pickIdleWorker(spec.JobID)
	if w == nil {
		return nil, fmt.Errorf("%w for task %s", ErrNoIdleWorker, spec.ID)
	}

	w.SetJobID(spec.JobID)
	w.SetAssignedTask(&spec)
	w.AssignTaskID(spec.ID)
	w.SetOwnerAddress(req.Owner)
	if spec.IsActorCreationTask() {
		w.AssignActorID(spec.ActorID)
	}

	metrics.WorkerLeasesTotal.WithLabelValues(string(spec.Kind)).Inc()
	d.logger.Info().
		Str("worker_id", w.ID().String()).
		Str("task_id", spec.ID.String()).
		Str("job_id", spec.JobID.String()).
		Str("kind", string(spec.Kind)).
		Msg("leased worker")
	d.broker.Publish(events.NewEvent(events.EventWorkerLeased, w.ID(),
		fmt.Sprintf("leased for %s task %s", spec.Kind, spec.ID)))
	return w, nil
}

// pickIdleWorker returns the idle worker with the lowest ID that can serve
// the given job, or nil. Workers are job-sticky: once leased to a job they
// only serve that job again.
func (d *Daemon) pickIdleWorker(jobID types.JobID) *worker.Worker {
	candidates := d.table.List()
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID() < candidates[j].ID()
	})

	for _, w := range candidates {
		if w.Type() != types.WorkerTypeWorker || w.IsDead() {
			continue
		}
		if w.Port() <= 0 {
			// Not announced yet; nothing to dispatch to.
			continue
		}
		if !w.AssignedTaskID().IsNil() || !w.ActorID().IsNil() {
			continue
		}
		if leased := w.AssignedJobID(); !leased.IsNil() && leased != jobID {
			continue
		}
		return w
	}
	return nil
}

// ReleaseWorker returns a leased worker to the idle pool. The task ID must
// match the current lease. A worker that became an actor keeps its binding
// for life; releasing it only retires the creation task.
func (d *Daemon) ReleaseWorker(id types.WorkerID, taskID types.TaskID) error {
	if taskID.IsNil() {
		return fmt.Errorf("release request carries no task ID")
	}
	w := d.table.Get(id)
	if w == nil {
		return fmt.Errorf("%w %s", ErrUnknownWorker, id)
	}

	d.leaseMu.Lock()
	defer d.leaseMu.Unlock()

	current := w.AssignedTaskID()
	if current != taskID {
		return fmt.Errorf("worker %s is not leased to task %s", id, taskID)
	}

	w.AssignTaskID(types.NilTaskID)
	if w.ActorID().IsNil() {
		w.SetOwnerAddress(types.Address{})
	}

	d.logger.Info().
		Str("worker_id", id.String()).
		Str("task_id", taskID.String()).
		Msg("released worker")
	d.broker.Publish(events.NewEvent(events.EventWorkerReleased, id,
		fmt.Sprintf("released from task %s", taskID)))
	return nil
}
