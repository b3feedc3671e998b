package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes recorded by LeadMetrics.
const (
	OutcomeCreated     = "created"
	OutcomeInvalid     = "invalid"
	OutcomeTooLarge    = "too_large"
	OutcomeUnavailable = "unavailable"
	OutcomeFailed      = "failed"
)

// LeadMetrics exposes counters/histograms for the lead submission endpoint.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	latency          *prometheus.HistogramVec
	datastoreReady   prometheus.Gauge
}

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Total lead submissions by outcome",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "submission_duration_seconds",
			Help:      "Latency of lead submission handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		datastoreReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leadcapture",
			Subsystem: "datastore",
			Name:      "ready",
			Help:      "1 when the lead datastore connection is ready",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.latency, m.datastoreReady)
	return m
}

func (m *LeadMetrics) ObserveSubmission(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	m.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (m *LeadMetrics) SetDatastoreReady(ready bool) {
	if m == nil {
		return
	}
	if ready {
		m.datastoreReady.Set(1)
		return
	}
	m.datastoreReady.Set(0)
}
