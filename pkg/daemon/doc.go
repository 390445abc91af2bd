// Package daemon implements the node-local worker supervisor.
//
// The daemon owns one Table of worker records. Every worker process on
// the node passes through the same lifecycle:
//
//	SpawnWorker          AnnounceWorker            exit
//	    │                      │                     │
//	    ▼                      ▼                     ▼
//	process started ──► RPC port connected ──► reaped from table
//	spawn record            (by token)         spawn record dropped
//	persisted
//
// # Spawning
//
// SpawnWorker launches the configured worker command with the worker's
// identity injected through the environment:
//
//	NODELET_WORKER_ID      the worker ID the daemon assigned
//	NODELET_STARTUP_TOKEN  correlation token echoed back on announce
//	NODELET_WORKER_PORT    the RPC port assigned from the node's range
//	NODELET_API_ADDR       where to reach the daemon API
//	NODELET_NODE_IP        the node's address
//	NODELET_SCRATCH_DIR    private directory for the worker's temp files
//
// A spawn record (worker ID, PID, token, start time) is persisted before
// the record is registered, so a daemon crash between spawn and register
// cannot leak an unsupervised process.
//
// # Announce
//
// The worker boots, binds its RPC server, and posts its port back to the
// daemon API. The daemon correlates the callback by startup token,
// validates it, and connects the record's outbound RPC channel. Announce
// arguments come from the network, so violations are error returns, not
// contract panics.
//
// # Leasing
//
// LeaseWorker hands an idle announced worker to a task. The grant binds
// the worker to the task's job for the rest of its life, records the
// task and its owner, and for actor creation binds the actor
// permanently. ReleaseWorker returns a plain task worker to the idle
// pool; an actor worker keeps its owner and never becomes idle again.
//
// # Supervision
//
// A single loop ticks every HealthSeconds and sweeps the table:
//
//   - workers whose process has exited are reaped: removed from the
//     table, spawn record deleted, assigned port released, exit counted
//     by reason (killed, crashed, disconnected) and published
//   - workers with an announced port get an advisory TCP probe; a wedged
//     port is logged but never acted on
//
// # Orphan reaping
//
// On Start the daemon replays the spawn records persisted by its
// predecessor. A recorded PID that is still running with a matching
// start time is an orphaned worker and is killed outright. A PID whose
// start time drifted past the tolerance belongs to an unrelated process
// that recycled it; the record is dropped without signaling. Scratch
// directories with no surviving owner are swept afterwards.
//
// # Shutdown
//
// Stop drains in order: supervision loop, graceful kill of every
// registered worker, reap until the context expires, then force kill of
// stragglers, event broker, store.
package daemon
