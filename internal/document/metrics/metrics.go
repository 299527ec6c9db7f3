package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the document lifecycle.
type Metrics struct {
	DocumentsRegistered *prometheus.CounterVec
	Reviews             *prometheus.CounterVec
	ExpiredTransitions  prometheus.Counter
	SweepDuration       prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		DocumentsRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_documents_registered_total",
			Help: "Total uploaded documents registered by document type",
		}, []string{"type_id"}),
		Reviews: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_document_reviews_total",
			Help: "Total reviewer decisions by outcome",
		}, []string{"decision"}),
		ExpiredTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboarding_documents_expired_total",
			Help: "Total documents moved to expired by the sweep",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_document_sweep_duration_seconds",
			Help:    "Duration of one expiration sweep",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementRegistered(typeID string) {
	if m != nil {
		m.DocumentsRegistered.WithLabelValues(typeID).Inc()
	}
}

func (m *Metrics) IncrementReview(decision string) {
	if m != nil {
		m.Reviews.WithLabelValues(decision).Inc()
	}
}

// ObserveSweep records one sweep and the number of records it expired.
func (m *Metrics) ObserveSweep(expired int, d time.Duration) {
	if m != nil {
		m.ExpiredTransitions.Add(float64(expired))
		m.SweepDuration.Observe(d.Seconds())
	}
}
