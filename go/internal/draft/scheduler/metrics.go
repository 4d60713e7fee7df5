package scheduler

import (
	"github.com/mcdev12/tierdraft/go/internal/draft/jobs"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks job processing. A nil *Metrics records nothing.
type Metrics struct {
	fired   *prometheus.CounterVec
	retried prometheus.Counter
	gaveUp  prometheus.Counter
}

// NewMetrics creates the scheduler collectors and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Subsystem: "scheduler",
			Name:      "jobs_fired_total",
			Help:      "Jobs handed to a worker by kind and status.",
		}, []string{"kind", "status"}),
		retried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Subsystem: "scheduler",
			Name:      "skip_retries_total",
			Help:      "Skip jobs rescheduled after a no-op.",
		}),
		gaveUp: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tierdraft",
			Subsystem: "scheduler",
			Name:      "skip_retries_exhausted_total",
			Help:      "Skip jobs dropped after reaching the retry cap.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.fired, m.retried, m.gaveUp)
	}
	return m
}

func (m *Metrics) recordFired(kind jobs.Kind, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.fired.WithLabelValues(string(kind), status).Inc()
}

func (m *Metrics) recordRetry() {
	if m == nil {
		return
	}
	m.retried.Inc()
}

func (m *Metrics) recordGaveUp() {
	if m == nil {
		return
	}
	m.gaveUp.Inc()
}
