package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for client registration.
type Metrics struct {
	ClientsRegistered *prometheus.CounterVec
	RegisterDuration  prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		ClientsRegistered: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboarding_clients_registered_total",
			Help: "Total clients registered by person type",
		}, []string{"person_type"}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboarding_client_register_duration_seconds",
			Help:    "Duration of client registration including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementRegistered(personType string) {
	if m != nil {
		m.ClientsRegistered.WithLabelValues(personType).Inc()
	}
}

// ObserveRegister records a registration started at start.
func (m *Metrics) ObserveRegister(start time.Time) {
	if m != nil {
		m.RegisterDuration.Observe(time.Since(start).Seconds())
	}
}
