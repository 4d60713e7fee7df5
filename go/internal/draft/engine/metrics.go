package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting engine metrics
type MetricsCollector interface {
	RecordPick(source string)
	RecordSkip(reason string)
	RecordCascade(depth int)
	RecordCommit(op string, success bool, duration time.Duration)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordPick(source string)                                     {}
func (n *NoOpMetricsCollector) RecordSkip(reason string)                                     {}
func (n *NoOpMetricsCollector) RecordCascade(depth int)                                      {}
func (n *NoOpMetricsCollector) RecordCommit(op string, success bool, duration time.Duration) {}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	picks        *prometheus.CounterVec
	skips        *prometheus.CounterVec
	cascadeDepth prometheus.Histogram
	commits      *prometheus.CounterVec
	commitTime   *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		picks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Name:      "picks_committed_total",
			Help:      "Committed picks by source (manual or auto).",
		}, []string{"source"}),
		skips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Name:      "skips_total",
			Help:      "Skipped turns by reason (forced or done).",
		}, []string{"reason"}),
		cascadeDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tierdraft",
			Name:      "cascade_depth",
			Help:      "Auto-picks made in a single transaction.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Name:      "commits_total",
			Help:      "Engine transactions by operation and status.",
		}, []string{"op", "status"}),
		commitTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tierdraft",
			Name:      "commit_duration_seconds",
			Help:      "Engine transaction latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg != nil {
		reg.MustRegister(m.picks, m.skips, m.cascadeDepth, m.commits, m.commitTime)
	}
	return m
}

func (m *PrometheusMetrics) RecordPick(source string) {
	m.picks.WithLabelValues(source).Inc()
}

func (m *PrometheusMetrics) RecordSkip(reason string) {
	m.skips.WithLabelValues(reason).Inc()
}

func (m *PrometheusMetrics) RecordCascade(depth int) {
	m.cascadeDepth.Observe(float64(depth))
}

func (m *PrometheusMetrics) RecordCommit(op string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.commits.WithLabelValues(op, status).Inc()
	m.commitTime.WithLabelValues(op).Observe(duration.Seconds())
}
