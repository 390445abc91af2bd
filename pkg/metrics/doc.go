/*
Package metrics provides the Prometheus metrics for nodelet.

All metrics are package-level collectors registered at init time and
exported at /metrics via Handler(). Names follow the nodelet_* prefix with
_total suffixes on counters.

# Worker Metrics

  - nodelet_workers_alive{type}: live workers by type (gauge, via Collector)
  - nodelet_workers_blocked: workers parked on a dependency (gauge)
  - nodelet_worker_spawns_total: processes spawned
  - nodelet_worker_exits_total{reason}: exits by reason (crashed, killed,
    disconnected)

# Termination Metrics

  - nodelet_worker_kills_total{mode}: kill protocols started, mode is
    "graceful" or "force"
  - nodelet_worker_kill_escalations_total: graceful kills that had to be
    escalated to a forced kill after the grace period
  - nodelet_orphans_reaped_total: stale processes reaped at daemon startup

# Lease and Pool Metrics

  - nodelet_worker_leases_total{kind}: leases granted by task kind
  - nodelet_pool_reconciles_total: idle pool reconcile cycles
  - nodelet_pool_reconcile_duration_seconds: reconcile cycle duration

# Notification Metrics

  - nodelet_worker_notifications_total{kind,outcome}: outbound advisory
    notifications (gcs_restart, arg_wait_complete) by outcome (ok, error)

# API Metrics

  - nodelet_api_requests_total{method,status}
  - nodelet_api_request_duration_seconds{method}

# Collector

Collector polls a StatsFunc snapshot of the daemon's worker table on an
interval and publishes the gauges. It takes a function rather than the
table itself so this package stays a leaf.

	collector := metrics.NewCollector(daemon.Stats, 15*time.Second)
	collector.Start()
	defer collector.Stop()

# Timing Helpers

Timer measures elapsed time for histogram observations:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.PoolReconcileDuration)
*/
package metrics
