package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics
	WorkersAlive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodelet_workers_alive",
			Help: "Number of live workers by type",
		},
		[]string{"type"},
	)

	WorkersBlocked = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodelet_workers_blocked",
			Help: "Number of workers parked waiting on a dependency",
		},
	)

	WorkerSpawnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelet_worker_spawns_total",
			Help: "Total number of worker processes spawned",
		},
	)

	WorkerExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelet_worker_exits_total",
			Help: "Total number of worker exits by reason",
		},
		[]string{"reason"},
	)

	// Termination metrics
	WorkerKillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelet_worker_kills_total",
			Help: "Total number of kill protocols started by mode",
		},
		[]string{"mode"},
	)

	WorkerKillEscalationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelet_worker_kill_escalations_total",
			Help: "Total number of graceful kills escalated to a forced kill",
		},
	)

	OrphansReapedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelet_orphans_reaped_total",
			Help: "Total number of orphaned worker processes reaped at startup",
		},
	)

	// Lease metrics
	WorkerLeasesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelet_worker_leases_total",
			Help: "Total number of worker leases granted by task kind",
		},
		[]string{"kind"},
	)

	// Idle pool metrics
	PoolReconcilesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelet_pool_reconciles_total",
			Help: "Total number of idle pool reconcile cycles",
		},
	)

	PoolReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nodelet_pool_reconcile_duration_seconds",
			Help:    "Idle pool reconcile cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notification metrics
	WorkerNotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelet_worker_notifications_total",
			Help: "Total number of outbound worker notifications by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodelet_api_requests_total",
			Help: "Total number of API requests by method and status",
		},
		[]string{"method", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodelet_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(WorkersAlive)
	prometheus.MustRegister(WorkersBlocked)
	prometheus.MustRegister(WorkerSpawnsTotal)
	prometheus.MustRegister(WorkerExitsTotal)
	prometheus.MustRegister(WorkerKillsTotal)
	prometheus.MustRegister(WorkerKillEscalationsTotal)
	prometheus.MustRegister(OrphansReapedTotal)
	prometheus.MustRegister(WorkerLeasesTotal)
	prometheus.MustRegister(PoolReconcilesTotal)
	prometheus.MustRegister(PoolReconcileDuration)
	prometheus.MustRegister(WorkerNotificationsTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Kill modes, exit reasons, notification kinds and outcomes used as label
// values.
const (
	KillModeGraceful = "graceful"
	KillModeForce    = "force"

	ExitCrashed      = "crashed"
	ExitKilled       = "killed"
	ExitDisconnected = "disconnected"

	NotifyGCSRestart = "gcs_restart"
	NotifyArgWait    = "arg_wait_complete"

	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
