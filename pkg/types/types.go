package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkerID uniquely identifies a worker process for its entire lifetime.
// It is assigned by the daemon at spawn time (or by the driver itself for
// driver workers) and never changes.
type WorkerID string

// NilWorkerID is the zero worker ID.
const NilWorkerID WorkerID = ""

// NewWorkerID returns a fresh, globally unique worker ID.
func NewWorkerID() WorkerID {
	return WorkerID(uuid.New().String())
}

// IsNil reports whether the ID is unset.
func (id WorkerID) IsNil() bool { return id == NilWorkerID }

func (id WorkerID) String() string { return string(id) }

// JobID identifies the job a worker is leased to. A worker serves at most
// one job in its lifetime.
type JobID string

// NilJobID is the zero job ID.
const NilJobID JobID = ""

// NewJobID returns a fresh job ID.
func NewJobID() JobID {
	return JobID(uuid.New().String())
}

// IsNil reports whether the ID is unset.
func (id JobID) IsNil() bool { return id == NilJobID }

func (id JobID) String() string { return string(id) }

// TaskID identifies a single task lease. Unlike job and actor bindings,
// task bindings are transient and change on every dispatch.
type TaskID string

// NilTaskID is the zero task ID.
const NilTaskID TaskID = ""

// NewTaskID returns a fresh task ID.
func NewTaskID() TaskID {
	return TaskID(uuid.New().String())
}

// IsNil reports whether the ID is unset.
func (id TaskID) IsNil() bool { return id == NilTaskID }

func (id TaskID) String() string { return string(id) }

// ActorID identifies the actor a worker hosts. Actor bindings are permanent:
// once a worker becomes an actor it stays that actor until it dies.
type ActorID string

// NilActorID is the zero actor ID.
const NilActorID ActorID = ""

// NewActorID returns a fresh actor ID.
func NewActorID() ActorID {
	return ActorID(uuid.New().String())
}

// IsNil reports whether the ID is unset.
func (id ActorID) IsNil() bool { return id == NilActorID }

func (id ActorID) String() string { return string(id) }

// PlacementGroupID identifies a placement group.
type PlacementGroupID string

// NilPlacementGroupID is the zero placement group ID.
const NilPlacementGroupID PlacementGroupID = ""

// IsNil reports whether the ID is unset.
func (id PlacementGroupID) IsNil() bool { return id == NilPlacementGroupID }

func (id PlacementGroupID) String() string { return string(id) }

// BundleID addresses one resource bundle inside a placement group.
// The nil bundle uses index -1.
type BundleID struct {
	PlacementGroupID PlacementGroupID
	Index            int
}

// NilBundleID returns the sentinel bundle meaning "no bundle assigned".
func NilBundleID() BundleID {
	return BundleID{PlacementGroupID: NilPlacementGroupID, Index: -1}
}

// IsNil reports whether the bundle is the nil sentinel.
func (b BundleID) IsNil() bool {
	return b.PlacementGroupID.IsNil() && b.Index == -1
}

func (b BundleID) String() string {
	if b.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%s[%d]", b.PlacementGroupID, b.Index)
}

// StartupToken correlates a spawned OS process with the worker record the
// daemon created for it. The daemon hands the token to the process via its
// environment and the worker echoes it back when it announces its port.
type StartupToken int64

// Language is the runtime language of a worker process.
type Language string

const (
	LanguagePython Language = "python"
	LanguageJava   Language = "java"
	LanguageCPP    Language = "cpp"
)

// WorkerType is the role a worker process plays on the node.
type WorkerType string

const (
	// WorkerTypeWorker executes tasks and hosts actors.
	WorkerTypeWorker WorkerType = "worker"
	// WorkerTypeDriver is the user program that submits work. Drivers are
	// registered with the daemon but never spawned by it.
	WorkerTypeDriver WorkerType = "driver"
	// WorkerTypeSpillWorker moves objects to external storage.
	WorkerTypeSpillWorker WorkerType = "spill_worker"
	// WorkerTypeRestoreWorker loads spilled objects back.
	WorkerTypeRestoreWorker WorkerType = "restore_worker"
)

// Address locates the owner of a task lease: the process that submitted the
// work and must be told about its fate.
type Address struct {
	NodeID   string
	IP       string
	Port     int
	WorkerID WorkerID
}

// IsNil reports whether the address carries no endpoint.
func (a Address) IsNil() bool {
	return a.IP == "" && a.Port == 0
}

// TaskKind distinguishes how a task binds a worker.
type TaskKind string

const (
	// TaskKindNormal is a stateless function invocation.
	TaskKindNormal TaskKind = "normal"
	// TaskKindActorCreation turns the executing worker into an actor.
	TaskKindActorCreation TaskKind = "actor_creation"
	// TaskKindActorCall invokes a method on an existing actor.
	TaskKindActorCall TaskKind = "actor_call"
)

// TaskSpec is the slice of a task's specification the daemon cares about:
// enough to identify the lease and to classify the worker it binds.
type TaskSpec struct {
	ID       TaskID
	JobID    JobID
	Kind     TaskKind
	Name     string
	ActorID  ActorID
	Detached bool
}

// IsActorCreationTask reports whether executing this task turns the worker
// into an actor.
func (s *TaskSpec) IsActorCreationTask() bool {
	return s.Kind == TaskKindActorCreation
}

// IsDetachedActor reports whether the task creates a detached actor, one
// whose lifetime is not tied to the job that created it.
func (s *TaskSpec) IsDetachedActor() bool {
	return s.Kind == TaskKindActorCreation && s.Detached
}

// WorkerInfo is the wire snapshot of a worker record served by the daemon
// API and rendered by the CLI.
type WorkerInfo struct {
	ID             WorkerID     `json:"id"`
	Type           WorkerType   `json:"type"`
	Language       Language     `json:"language"`
	PID            int          `json:"pid"`
	IP             string       `json:"ip"`
	Port           int          `json:"port"`
	StartupToken   StartupToken `json:"startup_token"`
	JobID          JobID        `json:"job_id,omitempty"`
	TaskID         TaskID       `json:"task_id,omitempty"`
	ActorID        ActorID      `json:"actor_id,omitempty"`
	Blocked        bool         `json:"blocked"`
	Dead           bool         `json:"dead"`
	TaskAssignedAt time.Time    `json:"task_assigned_at,omitempty"`
}

// SpawnRecord is the persisted trace of a process the daemon started. It
// survives daemon restarts so orphaned workers can be reaped on boot.
type SpawnRecord struct {
	WorkerID     WorkerID
	PID          int
	StartupToken StartupToken
	Type         WorkerType
	Language     Language
	StartedAt    time.Time
}
