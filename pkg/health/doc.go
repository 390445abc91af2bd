/*
Package health provides health check mechanisms for supervised worker
processes and the daemon itself.

Three checkers implement the Checker interface: process (is the worker's
OS process still running), TCP (is its announced RPC port accepting
connections), and HTTP (is the daemon's healthz endpoint answering). The
Status type turns a stream of Results into a healthy/unhealthy verdict
with a retry threshold and a startup grace period.

# Checkers

Process:
  - Wraps a process.Handle and reports IsAlive
  - A dead process never recovers; pair with Retries: 1
  - Used by the daemon's supervision loop

TCP:
  - Dials the worker's announced RPC port
  - Catches wedged workers whose process still runs
  - Advisory: a failed dial logs a warning, it does not kill

HTTP:
  - Probes an HTTP endpoint with configurable method, headers,
    status range and timeout
  - Used by the CLI to probe the daemon's /healthz

# Usage

	checker := health.NewProcessChecker(handle)
	status := health.NewStatus()
	config := health.DefaultConfig()
	config.Retries = 1

	result := checker.Check(ctx)
	status.Update(result, config)
	if !status.Healthy {
		// reap the worker
	}

# Integration Points

This package integrates with:

  - pkg/daemon: process and TCP checks in the supervision loop
  - pkg/process: handles wrapped by ProcessChecker
  - cmd/nodelet: HTTP probe of the daemon from the status command
*/
package health
