package outbox

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector defines the interface for collecting outbox metrics
type MetricsCollector interface {
	RecordEventProcessed(eventType string, success bool, duration time.Duration)
	RecordBatchProcessed(count int, duration time.Duration)
	RecordOutboxLag(lag int)
	RecordPublishAttempt(eventType string, attempt int, success bool)
}

// NoOpMetricsCollector is a no-op implementation for when metrics aren't needed
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
}
func (n *NoOpMetricsCollector) RecordBatchProcessed(count int, duration time.Duration)           {}
func (n *NoOpMetricsCollector) RecordOutboxLag(lag int)                                          {}
func (n *NoOpMetricsCollector) RecordPublishAttempt(eventType string, attempt int, success bool) {}

// MetricPublisher wraps a Publisher with metrics collection
type MetricPublisher struct {
	publisher Publisher
	metrics   MetricsCollector
}

func NewMetricPublisher(publisher Publisher, metrics MetricsCollector) *MetricPublisher {
	return &MetricPublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (p *MetricPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()
	err := p.publisher.Publish(ctx, event)
	p.metrics.RecordEventProcessed(event.EventType, err == nil, time.Since(start))
	return err
}

// PrometheusMetrics implements MetricsCollector using Prometheus
type PrometheusMetrics struct {
	eventCounter    *prometheus.CounterVec
	eventDuration   *prometheus.HistogramVec
	batchSize       prometheus.Histogram
	batchDuration   prometheus.Histogram
	outboxLag       prometheus.Gauge
	publishAttempts *prometheus.CounterVec
}

// NewPrometheusMetrics creates the outbox collectors and registers them with reg when non-nil.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		eventCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Subsystem: "outbox",
			Name:      "events_published_total",
			Help:      "Published outbox events by type and status.",
		}, []string{"event_type", "status"}),
		eventDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tierdraft",
			Subsystem: "outbox",
			Name:      "publish_duration_seconds",
			Help:      "Time spent publishing a single event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tierdraft",
			Subsystem: "outbox",
			Name:      "batch_size",
			Help:      "Events published per fallback batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tierdraft",
			Subsystem: "outbox",
			Name:      "batch_duration_seconds",
			Help:      "Time spent on a fallback batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		outboxLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tierdraft",
			Subsystem: "outbox",
			Name:      "pending_events",
			Help:      "Unsent events at the last poll.",
		}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Subsystem: "outbox",
			Name:      "publish_attempts_total",
			Help:      "Publish attempts by event type, attempt number and status.",
		}, []string{"event_type", "attempt", "status"}),
	}
	if reg != nil {
		reg.MustRegister(m.eventCounter, m.eventDuration, m.batchSize, m.batchDuration, m.outboxLag, m.publishAttempts)
	}
	return m
}

func (m *PrometheusMetrics) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	m.eventCounter.WithLabelValues(eventType, statusLabel(success)).Inc()
	m.eventDuration.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordBatchProcessed(count int, duration time.Duration) {
	m.batchSize.Observe(float64(count))
	m.batchDuration.Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordOutboxLag(lag int) {
	m.outboxLag.Set(float64(lag))
}

func (m *PrometheusMetrics) RecordPublishAttempt(eventType string, attempt int, success bool) {
	m.publishAttempts.WithLabelValues(eventType, strconv.Itoa(attempt), statusLabel(success)).Inc()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
