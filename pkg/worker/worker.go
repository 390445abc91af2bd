package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/nodelet/nodelet/pkg/contract"
	"github.com/nodelet/nodelet/pkg/log"
	"github.com/nodelet/nodelet/pkg/process"
	"github.com/nodelet/nodelet/pkg/rpc"
	"github.com/nodelet/nodelet/pkg/types"
)

// Options carries a worker record's identity and collaborators. Identity
// fields are immutable after New.
type Options struct {
	ID             types.WorkerID
	Language       types.Language
	Type           types.WorkerType
	IP             string
	StartupToken   types.StartupToken
	RuntimeEnvHash int

	// KillGracePeriod is the delay between the graceful termination
	// request and the forced kill. Zero escalates immediately.
	KillGracePeriod time.Duration
	// ClientFactory builds the outbound RPC client on Connect. Defaults
	// to the HTTP client.
	ClientFactory rpc.ClientFactory
	// Dispatcher drives notification completion callbacks. Defaults to
	// inline execution.
	Dispatcher rpc.Dispatcher
	// OnKillEscalated fires when a graceful kill escalates to a forced
	// kill after the grace period. Optional.
	OnKillEscalated func()
}

// Worker is the daemon's supervisory record for one worker process. It
// tracks identity, job/task/actor assignment, the process handle, the
// outbound RPC binding, and the termination protocol.
//
// A Worker is mutated concurrently by the scheduler, by RPC completion
// callbacks, and by the kill escalation timer. The killing and blocked
// flags are atomics; everything else is guarded by one mutex.
type Worker struct {
	id             types.WorkerID
	language       types.Language
	workerType     types.WorkerType
	ip             string
	runtimeEnvHash int

	grace       time.Duration
	factory     rpc.ClientFactory
	disp        rpc.Dispatcher
	onEscalated func()
	logger      zerolog.Logger

	killing atomic.Bool
	blocked atomic.Bool

	mu                sync.Mutex
	startupToken      types.StartupToken
	proc              process.Handle
	assignedPort      int
	port              int
	jobID             types.JobID
	taskID            types.TaskID
	actorID           types.ActorID
	bundleID          types.BundleID
	ownerAddress      types.Address
	assignedTask      *types.TaskSpec
	taskAssignedAt    time.Time
	isGPU             *bool
	isActorWorker     *bool
	client            rpc.WorkerClient
	pendingGCSRestart bool
}

// New creates a worker record. The process handle and RPC binding are
// attached later, once the OS process exists and the worker announces.
func New(opts Options) *Worker {
	contract.Check(!opts.ID.IsNil(), "worker record requires a worker ID")

	if opts.ClientFactory == nil {
		opts.ClientFactory = func(ip string, port int) rpc.WorkerClient {
			return rpc.NewHTTPClient(ip, port)
		}
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = rpc.InlineDispatcher{}
	}

	return &Worker{
		id:             opts.ID,
		language:       opts.Language,
		workerType:     opts.Type,
		ip:             opts.IP,
		runtimeEnvHash: opts.RuntimeEnvHash,
		startupToken:   opts.StartupToken,
		grace:          opts.KillGracePeriod,
		factory:        opts.ClientFactory,
		disp:           opts.Dispatcher,
		onEscalated:    opts.OnKillEscalated,
		bundleID:       types.NilBundleID(),
		logger: log.WithComponent("worker").With().
			Str("worker_id", opts.ID.String()).Logger(),
	}
}

// ID returns the worker's immutable ID.
func (w *Worker) ID() types.WorkerID { return w.id }

// Language returns the worker's runtime language.
func (w *Worker) Language() types.Language { return w.language }

// Type returns the worker's role on the node.
func (w *Worker) Type() types.WorkerType { return w.workerType }

// IP returns the address the worker's RPC endpoint binds to.
func (w *Worker) IP() string { return w.ip }

// RuntimeEnvHash identifies the runtime environment the worker was
// started with, for lease compatibility checks.
func (w *Worker) RuntimeEnvHash() int { return w.runtimeEnvHash }

// StartupToken returns the spawn correlation token.
func (w *Worker) StartupToken() types.StartupToken {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.startupToken
}

// SetStartupToken updates the spawn correlation token.
func (w *Worker) SetStartupToken(token types.StartupToken) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.startupToken = token
}

// SetProcess binds the OS process exactly once.
func (w *Worker) SetProcess(h process.Handle) {
	contract.Checkf(h != nil, "worker %s: nil process handle", w.id)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.proc != nil {
		contract.Checkf(false, "worker %s: process already bound to pid %d",
			w.id, w.proc.Pid())
	}
	w.proc = h
}

// Process returns the bound process handle, or nil before SetProcess.
func (w *Worker) Process() process.Handle {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.proc
}

// Pid returns the bound process ID, or 0 before SetProcess.
func (w *Worker) Pid() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.proc == nil {
		return 0
	}
	return w.proc.Pid()
}

// SetAssignedPort records the port the worker runtime announced.
func (w *Worker) SetAssignedPort(port int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.assignedPort = port
}

// AssignedPort returns the announced port.
func (w *Worker) AssignedPort() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.assignedPort
}

// Port returns the negotiated RPC port, or 0 while unconnected. A worker
// may legitimately die before announcing, so reading 0 here is not a
// contract violation.
func (w *Worker) Port() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.port
}

// SetJobID leases the worker to a job. The first non-nil value sticks for
// the worker's lifetime: re-setting the same job is a no-op, any other
// value means two schedulers disagree about ownership.
func (w *Worker) SetJobID(id types.JobID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.jobID == id {
		return
	}
	contract.Checkf(w.jobID.IsNil(),
		"worker %s: already leased to job %s, cannot reassign to %s",
		w.id, w.jobID, id)
	w.jobID = id
}

// AssignedJobID returns the job the worker is leased to.
func (w *Worker) AssignedJobID() types.JobID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.jobID
}

// AssignActorID permanently classifies the worker as the host of the
// given actor. Assigning twice is fatal even with the same value.
func (w *Worker) AssignActorID(id types.ActorID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	contract.Checkf(!id.IsNil(), "worker %s: nil actor ID", w.id)
	contract.Checkf(w.actorID.IsNil(),
		"worker %s: already hosts actor %s, cannot assign actor %s",
		w.id, w.actorID, id)
	w.actorID = id
}

// ActorID returns the hosted actor, or nil for plain task workers.
func (w *Worker) ActorID() types.ActorID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.actorID
}

// AssignTaskID records the current task lease. Unlike jobs and actors this
// reassigns freely; a non-nil lease stamps the assignment time used for
// staleness diagnostics.
func (w *Worker) AssignTaskID(id types.TaskID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.taskID = id
	if !id.IsNil() {
		w.taskAssignedAt = time.Now()
	}
}

// AssignedTaskID returns the current task lease.
func (w *Worker) AssignedTaskID() types.TaskID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.taskID
}

// TaskAssignedAt returns when the current task was leased.
func (w *Worker) TaskAssignedAt() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.taskAssignedAt
}

// SetAssignedTask records the specification of the leased task.
func (w *Worker) SetAssignedTask(spec *types.TaskSpec) {
	contract.Checkf(spec != nil, "worker %s: nil task spec", w.id)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.assignedTask = spec
}

// AssignedTask returns the leased task's specification, or nil.
func (w *Worker) AssignedTask() *types.TaskSpec {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.assignedTask
}

// IsDetachedActor reports whether the assigned task creates a detached
// actor. Valid only once a task has been assigned.
func (w *Worker) IsDetachedActor() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	contract.Checkf(w.assignedTask != nil,
		"worker %s: detachment queried with no task assigned", w.id)
	return w.assignedTask.IsDetachedActor()
}

// SetBundleID pins the worker to a placement group bundle. Freely
// reassignable; use types.NilBundleID to unpin.
func (w *Worker) SetBundleID(id types.BundleID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bundleID = id
}

// BundleID returns the pinned bundle, NilBundleID when unpinned.
func (w *Worker) BundleID() types.BundleID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bundleID
}

// SetOwnerAddress records the owner of the current lease.
func (w *Worker) SetOwnerAddress(addr types.Address) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ownerAddress = addr
}

// OwnerAddress returns the owner of the current lease.
func (w *Worker) OwnerAddress() types.Address {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ownerAddress
}

// SetIsGPU classifies the worker as GPU or non-GPU. The first value
// sticks; a conflicting later value is fatal, a repeated equal value is a
// no-op.
func (w *Worker) SetIsGPU(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isGPU != nil {
		contract.Checkf(*w.isGPU == v,
			"worker %s: GPU classification already %t, cannot flip to %t",
			w.id, *w.isGPU, v)
		return
	}
	w.isGPU = &v
}

// IsGPU returns the GPU classification. Reading before any SetIsGPU is
// fatal: lease matching must never run against an unclassified worker.
func (w *Worker) IsGPU() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	contract.Checkf(w.isGPU != nil,
		"worker %s: GPU classification read before set", w.id)
	return *w.isGPU
}

// SetIsActorWorker classifies the worker for actor scheduling, with the
// same set-once-then-checked semantics as SetIsGPU.
func (w *Worker) SetIsActorWorker(v bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isActorWorker != nil {
		contract.Checkf(*w.isActorWorker == v,
			"worker %s: actor-worker classification already %t, cannot flip to %t",
			w.id, *w.isActorWorker, v)
		return
	}
	w.isActorWorker = &v
}

// IsActorWorker returns the actor-worker classification; fatal before set.
func (w *Worker) IsActorWorker() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	contract.Checkf(w.isActorWorker != nil,
		"worker %s: actor-worker classification read before set", w.id)
	return *w.isActorWorker
}

// TaskOrActorDebugString labels the worker's current work for log lines:
// "actor ID: X" once an actor is assigned, otherwise "task ID: Y".
func (w *Worker) TaskOrActorDebugString() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.actorID.IsNil() {
		return fmt.Sprintf("actor ID: %s", w.actorID)
	}
	return fmt.Sprintf("task ID: %s", w.taskID)
}

// Info snapshots the record for the API and CLI.
func (w *Worker) Info() types.WorkerInfo {
	w.mu.Lock()
	defer w.mu.Unlock()

	info := types.WorkerInfo{
		ID:             w.id,
		Type:           w.workerType,
		Language:       w.language,
		IP:             w.ip,
		Port:           w.port,
		StartupToken:   w.startupToken,
		JobID:          w.jobID,
		TaskID:         w.taskID,
		ActorID:        w.actorID,
		Blocked:        w.blocked.Load(),
		Dead:           w.killing.Load(),
		TaskAssignedAt: w.taskAssignedAt,
	}
	if w.proc != nil {
		info.PID = w.proc.Pid()
	}
	return info
}
