/*
Package api implements the daemon's HTTP API.

The API is the daemon's only inbound surface. Worker runtimes call it to
announce their RPC port and to say goodbye; schedulers call it to lease
and release workers; operators call it to inspect and kill workers and
to forward control plane restart notifications.

# Architecture

	┌──────── WORKER RUNTIME ────────┐   ┌──── SCHEDULER / OPERATOR ─────┐
	│                                 │   │                                │
	│  POST /v1/workers/announce      │   │  GET  /v1/workers              │
	│  POST /v1/workers/{id}/         │   │  POST /v1/workers/lease        │
	│       disconnect                │   │  POST /v1/workers/{id}/kill    │
	│                                 │   │  POST /v1/gcs/restarted        │
	└───────────────┬────────────────┘   └───────────────┬───────────────┘
	                │           HTTP/JSON (port 6790)     │
	                └──────────────────┬──────────────────┘
	                                   │
	                  ┌────────────────▼────────────────┐
	                  │        api.Server (mux)          │
	                  │  - request validation            │
	                  │  - metrics + logging middleware  │
	                  └────────────────┬────────────────┘
	                                   │
	                  ┌────────────────▼────────────────┐
	                  │          daemon.Daemon           │
	                  └─────────────────────────────────┘

# Endpoints

Worker-facing:

	POST /v1/workers/announce          {worker_id, startup_token, port}
	POST /v1/workers/{id}/disconnect

Scheduler-facing:

	POST /v1/workers/lease             {task_id, job_id, kind, ...}
	POST /v1/workers/{id}/release      {task_id}

Operator-facing:

	GET  /v1/workers                   worker snapshots
	POST /v1/workers/{id}/kill         {force}, 202 Accepted
	POST /v1/gcs/restarted             fan out restart notification

Probes:

	GET /healthz                       daemon liveness
	GET /metrics                       Prometheus exposition

# Error Mapping

Daemon sentinel errors translate to status codes: unknown worker or
startup token is 404, a worker already terminating is 409, no idle
worker to lease is 503, malformed input is 400. Kill returns 202 because
termination is asynchronous; the record leaves the table only when the
exit is observed.

# Usage

	srv := api.NewServer(d)
	go srv.Start(":6790")
	...
	srv.Shutdown(ctx)
*/
package api
