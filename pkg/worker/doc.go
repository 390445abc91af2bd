/*
Package worker implements the daemon's per-worker supervisory record.

Every worker process the daemon starts (or adopts) is shadowed by one
Worker value holding its identity, its job/task/actor assignment, its OS
process handle, its outbound RPC binding, and the state machine for
killing it. The record outlives none of these concerns individually; it
is the single place where they meet.

# Architecture

	┌───────────────────── WORKER RECORD ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐           │
	│  │            Identity (immutable)            │           │
	│  │  WorkerID, Language, Type, IP, EnvHash     │           │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  ┌────────────────────────────────────────────┐           │
	│  │          Assignment (mutex-guarded)        │           │
	│  │  JobID     first non-nil sticks            │           │
	│  │  ActorID   nil → non-nil exactly once      │           │
	│  │  TaskID    reassigns freely, timestamped   │           │
	│  │  BundleID, OwnerAddress, IsGPU, IsActor    │           │
	│  └────────────────────────────────────────────┘           │
	│                                                            │
	│  ┌──────────────────┐  ┌──────────────────────┐           │
	│  │  Process Handle  │  │   RPC Binding        │           │
	│  │  SetProcess once │  │   Connect / replay   │           │
	│  │  Kill protocol   │  │   deferred restart   │           │
	│  └──────────────────┘  │   notification       │           │
	│                        └──────────────────────┘           │
	│                                                            │
	│  killing (atomic): one-shot kill latch                    │
	│  blocked (atomic): parked on blocking get/wait            │
	└────────────────────────────────────────────────────────────┘

# Kill Protocol

Kill(force) is safe to call from any goroutine any number of times. An
atomic compare-and-swap on the killing latch picks exactly one winner;
everyone else returns immediately. The winner either kills the process
outright (force) or requests a graceful exit and arms a timer:

 1. Send the graceful termination signal to the process group.
 2. After the grace period, check whether the process is still alive.
 3. If it is, log the escalation and force kill it.

The timer closure captures the process handle and logger directly, so
escalation still fires even if the daemon has already dropped the record
from its table. IsDead reports the latch, which flips at the kill
decision, not when the OS process actually exits.

# Connection Protocol

Workers announce their RPC port after startup. Connect(port) builds the
outbound client through the factory and records the negotiated port;
ConnectClient binds a prebuilt client without a port, which keeps
port-gated calls such as ActorCallArgWaitComplete unavailable.

A control plane restart can race worker startup. AsyncNotifyGCSRestart
on an unconnected record parks the notification; the next bind replays
it exactly once. Notification sends are asynchronous and best-effort,
with completion handled on the record's dispatcher.

# Usage

Creating and supervising a worker:

	w := worker.New(worker.Options{
		ID:              types.NewWorkerID(),
		Language:        types.LanguagePython,
		Type:            types.WorkerTypeWorker,
		IP:              "10.0.0.7",
		StartupToken:    token,
		KillGracePeriod: 10 * time.Second,
	})

	w.SetProcess(handle)   // once, after spawn
	w.Connect(port)        // once the worker announces

	w.SetJobID(jobID)
	w.AssignTaskID(taskID)

	w.Kill(false)          // graceful, escalates after the grace period

# Integration Points

This package integrates with:

  - pkg/daemon: owns the worker table and drives spawn/announce/kill
  - pkg/process: OS process handles bound via SetProcess
  - pkg/rpc: outbound client construction and completion dispatch
  - pkg/contract: fatal checks on identity and assignment invariants
  - pkg/metrics: kill, escalation and notification counters

# Invariants

Violations of these are daemon bugs and crash the process via
pkg/contract rather than propagating as errors:

  - SetProcess binds at most once
  - SetJobID accepts one job; repeating the same job is a no-op
  - AssignActorID transitions nil → non-nil exactly once
  - SetIsGPU / SetIsActorWorker never flip an established value
  - IsGPU / IsActorWorker are never read before being set
  - Connect requires a positive port
  - ActorCallArgWaitComplete requires a negotiated port
*/
package worker
