package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for coherence evaluations.
type Metrics struct {
	Evaluations   *prometheus.CounterVec
	Score         prometheus.Histogram
	Discrepancies *prometheus.CounterVec
	Alerts        *prometheus.CounterVec
	MemoLookups   *prometheus.CounterVec
	Latency       prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_coherence_evaluations_total",
			Help: "Total coherence evaluations by result",
		}, []string{"result"}), // result: "coherent", "incoherent", "error"
		Score: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_coherence_score",
			Help:    "Distribution of coherence scores",
			Buckets: []float64{20, 40, 60, 70, 80, 90, 100},
		}),
		Discrepancies: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_coherence_discrepancies_total",
			Help: "Discrepancies found by severity",
		}, []string{"severity"}),
		Alerts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_coherence_alerts_total",
			Help: "Risk alerts raised by type",
		}, []string{"type"}),
		MemoLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_coherence_memo_lookups_total",
			Help: "Report memo lookups by result",
		}, []string{"result"}),
		Latency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_coherence_evaluate_duration_seconds",
			Help:    "Duration of a coherence evaluation including analyzer calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Metrics) IncrementEvaluation(result string) {
	if m != nil {
		m.Evaluations.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveScore(score int) {
	if m != nil {
		m.Score.Observe(float64(score))
	}
}

func (m *Metrics) IncrementDiscrepancy(severity string) {
	if m != nil {
		m.Discrepancies.WithLabelValues(severity).Inc()
	}
}

func (m *Metrics) IncrementAlert(alertType string) {
	if m != nil {
		m.Alerts.WithLabelValues(alertType).Inc()
	}
}

func (m *Metrics) IncrementMemo(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.MemoLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveLatency(d time.Duration) {
	if m != nil {
		m.Latency.Observe(d.Seconds())
	}
}
