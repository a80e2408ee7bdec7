package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	OffboardingSteps    *prometheus.CounterVec
	OffboardingDuration prometheus.Histogram
	AuditEntries        *prometheus.CounterVec
	ExportJobs          *prometheus.CounterVec
	PurgedEntries       prometheus.Counter
	PurgedFiles         prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		OffboardingSteps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "offboard_steps_total",
			Help: "Deactivation steps by target system and outcome",
		}, []string{"system", "outcome"}),
		OffboardingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "offboard_run_duration_seconds",
			Help:    "End-to-end duration of offboarding orchestrations",
			Buckets: prometheus.DefBuckets,
		}),
		AuditEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "offboard_audit_entries_total",
			Help: "Audit entries written, by status",
		}, []string{"status"}),
		ExportJobs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "offboard_export_jobs_total",
			Help: "Audit export jobs, by format and outcome",
		}, []string{"format", "outcome"}),
		PurgedEntries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "offboard_purged_audit_entries_total",
			Help: "Audit entries deleted by the retention purge",
		}),
		PurgedFiles: promauto.NewCounter(prometheus.CounterOpts{
			Name: "offboard_purged_export_files_total",
			Help: "Export files deleted by the retention purge",
		}),
	}
}

// ObserveRun records one completed orchestration.
func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.OffboardingDuration.Observe(d.Seconds())
}

// IncStep records one deactivation step outcome.
func (m *Metrics) IncStep(system, outcome string) {
	if m == nil {
		return
	}
	m.OffboardingSteps.WithLabelValues(system, outcome).Inc()
}

// IncAuditEntry records one audit append.
func (m *Metrics) IncAuditEntry(status string) {
	if m == nil {
		return
	}
	m.AuditEntries.WithLabelValues(status).Inc()
}

// IncExportJob records one export job outcome.
func (m *Metrics) IncExportJob(format, outcome string) {
	if m == nil {
		return
	}
	m.ExportJobs.WithLabelValues(format, outcome).Inc()
}

// AddPurged records retention purge work.
func (m *Metrics) AddPurged(entries, files int) {
	if m == nil {
		return
	}
	m.PurgedEntries.Add(float64(entries))
	m.PurgedFiles.Add(float64(files))
}
