package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Probe metrics
	ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_probes_total",
			Help: "Total number of probe attempts by method and result",
		},
		[]string{"method", "result"},
	)

	ProbeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookout_probe_duration_seconds",
			Help:    "Probe attempt duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Scheduler metrics
	TargetsScheduled = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookout_targets_scheduled",
			Help: "Number of targets with an active monitoring task",
		},
	)

	TargetsByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lookout_targets_status",
			Help: "Number of cached target statuses by status",
		},
		[]string{"status"},
	)

	CheckCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_check_cycles_total",
			Help: "Total number of retry-wrapped check cycles by trigger",
		},
		[]string{"trigger"},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_status_transitions_total",
			Help: "Total number of online/offline transitions by new status",
		},
		[]string{"status"},
	)

	// Reconciler metrics
	ReconciliationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lookout_reconciliation_duration_seconds",
			Help:    "Time taken to reconcile the monitored target set",
			Buckets: prometheus.DefBuckets,
		},
	)

	ReconciliationCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lookout_reconciliation_cycles_total",
			Help: "Total number of reconciliation cycles",
		},
	)

	ReconciliationChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_reconciliation_changes_total",
			Help: "Targets added, removed or rescheduled by reconciliation",
		},
		[]string{"change"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookout_api_requests_total",
			Help: "Total number of API requests by route and status",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lookout_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	WebsocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lookout_websocket_clients",
			Help: "Number of connected status stream clients",
		},
	)
)

func init() {
	prometheus.MustRegister(ProbesTotal)
	prometheus.MustRegister(ProbeDuration)
	prometheus.MustRegister(TargetsScheduled)
	prometheus.MustRegister(TargetsByStatus)
	prometheus.MustRegister(CheckCyclesTotal)
	prometheus.MustRegister(StatusTransitionsTotal)
	prometheus.MustRegister(ReconciliationDuration)
	prometheus.MustRegister(ReconciliationCyclesTotal)
	prometheus.MustRegister(ReconciliationChangesTotal)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
	prometheus.MustRegister(WebsocketClients)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
