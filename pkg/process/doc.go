/*
Package process spawns and signals worker OS processes.

The package provides the Handle abstraction the rest of nodelet supervises
through: a stable PID, a liveness check, a graceful terminate, and a forced
kill. The OS implementation wraps a real process; tests substitute fakes to
script liveness and count signals.

# Spawning

Start launches a worker in its own process group, so signals reach the
worker and everything it forks. A reaper goroutine waits on the child to
keep the process table clean and to give IsAlive an exact answer for owned
processes.

	h, err := process.Start(process.SpawnSpec{
		Command: []string{"/usr/bin/python3", "-m", "runtime.worker"},
		Env:     []string{"NODELET_STARTUP_TOKEN=17"},
	})

# Attaching

Attach wraps a PID recovered from a spawn record after a daemon restart.
Attached handles have no exit notification; IsAlive polls the process
table (via gopsutil) and treats zombies as dead. StartedAt exposes process
creation time so orphan reaping can detect PID reuse before killing.

# Signal Semantics

Terminate sends SIGTERM to the process group and falls back to the single
process for non-leaders; Kill does the same with SIGKILL. Signaling a
process that already exited is never an error. On Windows, Terminate is a
no-op and only Kill is effective.

# Integration Points

  - pkg/worker: drives Terminate/Kill through the termination protocol
  - pkg/daemon: spawns workers, polls IsAlive, reaps orphans
  - pkg/health: process liveness checker wraps IsAlive
*/
package process
