/*
Package scratch manages per-worker scratch directories.

Every spawned worker gets a private directory for temporary files,
created before the process starts and named by worker ID. The path
travels to the worker through its environment. When the daemon reaps the
worker's exit the directory is removed with everything in it, and a
boot-time sweep removes directories left behind by workers that died
with a previous daemon instance.

# Layout

	{data_dir}/scratch/
	├── 550e8400-e29b-41d4-a716-446655440000/
	├── 6ba7b810-9dad-11d1-80b4-00c04fd430c8/
	└── ...

# Usage

Creating a manager and a worker directory:

	m, err := scratch.NewManager("/var/lib/nodelet/scratch")
	if err != nil {
		return err
	}
	dir, err := m.Create(workerID)

Removing it when the worker is gone:

	_ = m.Remove(workerID)

Sweeping directories that belong to no live worker:

	removed, err := m.Sweep(map[types.WorkerID]bool{liveID: true})

# Integration Points

This package integrates with:

  - pkg/daemon: creates a directory per spawn, removes it when the exit
    is reaped, and sweeps stale directories during boot alongside orphan
    reaping

# Limitations

No quotas and no usage accounting. A worker that fills the disk is
caught by node monitoring, not by this package.
*/
package scratch
