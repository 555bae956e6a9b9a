package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuditWrites counts audit record writes by result (written|failed|skipped).
	AuditWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsphere_audit_writes_total",
			Help: "Total number of audit record write attempts",
		},
		[]string{"result"},
	)

	// AuditInFlight tracks detached audit writes that have not finished yet.
	AuditInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "clubsphere_audit_writes_in_flight",
			Help: "Number of audit writes currently running in the background",
		},
	)

	// AccessChecks counts role checks and their outcome (allowed|denied).
	AccessChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsphere_access_checks_total",
			Help: "Total number of role checks",
		},
		[]string{"role", "result"},
	)

	// ModuleRequests counts API requests per club module and audit action, split by outcome
	// (ok|client_error|server_error).
	ModuleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clubsphere_module_requests_total",
			Help: "Total number of API requests per club module",
		},
		[]string{"module", "action", "outcome"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clubsphere_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
