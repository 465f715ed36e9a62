package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks donation workflow activity.
type Metrics struct {
	Transitions     *prometheus.CounterVec
	Requested       *prometheus.CounterVec
	CollectedVolume prometheus.Histogram
	Certificates    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donation_transitions_total",
			Help: "Donation status changes, by source and target status",
		}, []string{"from", "to"}),
		Requested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donations_started_total",
			Help: "Donation processes started, by donation type",
		}, []string{"type"}),
		CollectedVolume: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_donation_collected_volume_ml",
			Help:    "Volume collected per donation",
			Buckets: []float64{100, 200, 300, 400, 450, 500, 550, 600, 650},
		}),
		Certificates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_donation_certificates_total",
			Help: "Certificate generation attempts, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementTransition(from, to string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) IncrementStarted(donationType string) {
	if m != nil {
		m.Requested.WithLabelValues(donationType).Inc()
	}
}

func (m *Metrics) ObserveVolume(ml int) {
	if m != nil {
		m.CollectedVolume.Observe(float64(ml))
	}
}

// IncrementCertificate records "issued" or "failed".
func (m *Metrics) IncrementCertificate(outcome string) {
	if m != nil {
		m.Certificates.WithLabelValues(outcome).Inc()
	}
}
