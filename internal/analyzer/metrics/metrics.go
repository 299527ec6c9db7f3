package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for document analyzer calls.
type Metrics struct {
	Requests       *prometheus.CounterVec
	Latency        *prometheus.HistogramVec
	CircuitChanges *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_analyzer_requests_total",
			Help: "Total analyzer calls by outcome category",
		}, []string{"outcome"}), // outcome: "ok" or an error category
		Latency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "onboarding_analyzer_request_duration_seconds",
			Help:    "Analyzer call latency by declared document type",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"type_id"}),
		CircuitChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_analyzer_circuit_changes_total",
			Help: "Analyzer circuit breaker transitions",
		}, []string{"state"}),
	}
}

func (m *Metrics) ObserveRequest(typeID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.Latency.WithLabelValues(typeID).Observe(d.Seconds())
}

func (m *Metrics) IncrementCircuitChange(state string) {
	if m != nil {
		m.CircuitChanges.WithLabelValues(state).Inc()
	}
}
