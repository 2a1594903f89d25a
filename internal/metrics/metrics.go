// Package metrics exposes Prometheus instrumentation for the audit
// pipeline: decisions by outcome and rejecting rule, and audit latency.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// maxLabelLen bounds label cardinality; a reason string is free text and
// must never explode the metric's label space.
const maxLabelLen = 64

// Metrics holds the process-wide counters and histograms. Obtain the
// singleton with Get.
type Metrics struct {
	decisions    *prometheus.CounterVec
	auditLatency prometheus.Histogram
	executions   *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the singleton Metrics instance, registering its collectors
// on the default registry on first call.
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Subsystem: "audit",
				Name:      "decisions_total",
				Help:      "Total audit decisions by outcome and rejecting rule",
			},
			[]string{"outcome", "rule"},
		),
		auditLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sentinel",
				Subsystem: "audit",
				Name:      "latency_seconds",
				Help:      "Time to reach an audit decision, end to end",
				Buckets:   prometheus.DefBuckets,
			},
		),
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Subsystem: "executor",
				Name:      "runs_total",
				Help:      "Total subprocess executions by outcome",
			},
			[]string{"outcome"},
		),
	}

	prometheus.MustRegister(m.decisions, m.auditLatency, m.executions)
	return m
}

// RecordDecision increments the decision counter. rule identifies which
// stage produced the outcome (e.g. "hard_kill:blocked_tool", "llm_auditor",
// "lockdown_allow_list").
func (m *Metrics) RecordDecision(allowed bool, rule string) {
	outcome := "rejected"
	if allowed {
		outcome = "allowed"
	}
	m.decisions.WithLabelValues(outcome, sanitizeLabel(rule)).Inc()
}

// ObserveAuditLatency records how long a full Audit call took.
func (m *Metrics) ObserveAuditLatency(d time.Duration) {
	m.auditLatency.Observe(d.Seconds())
}

// RecordExecution increments the executor outcome counter.
func (m *Metrics) RecordExecution(timedOut bool, returnCode int) {
	switch {
	case timedOut:
		m.executions.WithLabelValues("timeout").Inc()
	case returnCode == 0:
		m.executions.WithLabelValues("success").Inc()
	default:
		m.executions.WithLabelValues("nonzero_exit").Inc()
	}
}

func sanitizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}
	return s
}
