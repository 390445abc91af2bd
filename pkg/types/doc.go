/*
Package types defines the core data structures used throughout nodelet.

This package contains the fundamental identity and assignment types that
represent nodelet's domain model: workers, jobs, tasks, actors, and
placement bundles. These types are used by all other packages for worker
bookkeeping, API communication, and persistence.

# Identity Types

Every entity the daemon tracks is addressed by a typed ID:

  - WorkerID: one worker process, assigned at spawn, immutable
  - JobID: the job a worker is leased to (at most one per worker lifetime)
  - TaskID: the current task lease (reassigned on every dispatch)
  - ActorID: the actor a worker hosts (assigned at most once)
  - PlacementGroupID / BundleID: resource bundle the worker is pinned to

IDs are typed strings with a Nil sentinel and an IsNil helper, so that
"unset" is explicit at call sites instead of being an empty-string
convention:

	if w.ActorID().IsNil() {
		// still a plain task worker
	}

New IDs are generated with the New* constructors (UUID-backed).

# Assignment Semantics

The types encode three binding strengths, enforced by pkg/worker:

  - Permanent: ActorID. Set at most once, ever.
  - Sticky: JobID. Set once; later sets must carry the same value.
  - Transient: TaskID, BundleID, owner Address. Freely reassigned.

# Task Specifications

TaskSpec is deliberately a slice of the full task specification: the daemon
only needs enough to identify a lease and classify the worker it binds
(actor-creation vs normal, detached vs job-scoped). Dispatch payloads and
argument plumbing live with the scheduler, not here.

# Wire and Storage Types

WorkerInfo is the JSON snapshot served by the daemon API and consumed by
the CLI. SpawnRecord is the persisted trace of a spawned process used for
orphan reaping across daemon restarts; pkg/storage stores it as JSON in
BoltDB.

# Integration Points

This package integrates with:

  - pkg/worker: worker records hold these IDs and enforce their semantics
  - pkg/daemon: the worker table is keyed by WorkerID and StartupToken
  - pkg/storage: persists SpawnRecord values
  - pkg/api, pkg/client: exchange WorkerInfo snapshots
  - pkg/events: event payloads reference workers by WorkerID

# Thread Safety

All types in this package are plain values. They are safe to read
concurrently; mutation is synchronized by their owners (pkg/worker guards
assignment fields with its own lock).
*/
package types
