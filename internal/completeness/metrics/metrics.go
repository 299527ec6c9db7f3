package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for completeness evaluations.
type Metrics struct {
	Evaluations     *prometheus.CounterVec
	Percentage      prometheus.Histogram
	MemoLookups     *prometheus.CounterVec
	EvaluateLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_completeness_evaluations_total",
			Help: "Total completeness evaluations by recommended next action",
		}, []string{"next_action"}),
		Percentage: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_completeness_percentage",
			Help:    "Distribution of completeness percentages",
			Buckets: []float64{20, 40, 60, 80, 90, 95, 100},
		}),
		MemoLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_completeness_memo_lookups_total",
			Help: "Report memo lookups by result",
		}, []string{"result"}), // result: "hit", "miss"
		EvaluateLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_completeness_evaluate_duration_seconds",
			Help:    "Duration of a completeness evaluation including store reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveEvaluation records a computed (not memoised) report.
func (m *Metrics) ObserveEvaluation(nextAction string, percentage int) {
	if m != nil {
		m.Evaluations.WithLabelValues(nextAction).Inc()
		m.Percentage.Observe(float64(percentage))
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

func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}
