/*
Package storage provides BoltDB-backed persistence for the daemon's node
state.

The daemon's in-memory worker table dies with the daemon; the storage
layer is what lets a restarted daemon remember which worker processes its
predecessor spawned. Each spawn writes a record here, each observed exit
deletes it, and boot-time orphan reaping walks whatever is left.

# Architecture

	┌──────────────────── BOLTDB STORAGE ───────────────────┐
	│                                                         │
	│  BoltStore                                              │
	│    File: <dataDir>/nodelet.db                           │
	│    Transactions: ACID with fsync                        │
	│                                                         │
	│  Buckets:                                               │
	│    spawns  WorkerID → SpawnRecord (JSON)                │
	│    meta    last_startup_token → StartupToken (JSON)     │
	│                                                         │
	└─────────────────────────────────────────────────────────┘

Spawn records carry the PID, the startup token and the spawn time. The
spawn time doubles as a PID-reuse guard: a process whose start time does
not match its record is a different process wearing a recycled PID and
must not be killed.

The startup token counter persists so tokens stay unique across daemon
restarts; a token collision would let a stale worker announce itself into
a fresh record.

# Usage

	store, err := storage.NewBoltStore("/var/lib/nodelet")
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.PutSpawn(&types.SpawnRecord{
		WorkerID:     id,
		PID:          pid,
		StartupToken: token,
		StartedAt:    startedAt,
	})

	orphans, err := store.ListSpawns()

# Integration Points

This package integrates with:

  - pkg/daemon: writes spawn records, reaps orphans at boot
  - pkg/metrics: storage registered as a critical health component
*/
package storage
