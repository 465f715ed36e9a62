package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for request intake and pledging.
type Metrics struct {
	RequestsCreated *prometheus.CounterVec
	PledgesRecorded prometheus.Counter
	PledgesRejected *prometheus.CounterVec
	Fulfilled       prometheus.Counter
	EmergencyOpened prometheus.Counter
	PledgeDuration  prometheus.Histogram
	DonorsNotified  prometheus.Counter
}

// New registers the bloodrequest metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_created_total",
			Help: "Blood requests created, by urgency",
		}, []string{"urgency"}),
		PledgesRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_pledges_total",
			Help: "Pledges recorded against blood requests",
		}),
		PledgesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bloodlink_pledges_rejected_total",
			Help: "Pledges rejected, by error code",
		}, []string{"code"}),
		Fulfilled: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_blood_requests_fulfilled_total",
			Help: "Blood requests that reached their pledge quantity",
		}),
		EmergencyOpened: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_emergency_donations_opened_total",
			Help: "Emergency donation processes opened from pledges",
		}),
		PledgeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bloodlink_pledge_duration_seconds",
			Help:    "Duration of the pledge unit of work",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		DonorsNotified: f.NewCounter(prometheus.CounterOpts{
			Name: "bloodlink_request_donors_notified_total",
			Help: "Donor notifications enqueued for new blood requests",
		}),
	}
}

func (m *Metrics) IncrementCreated(urgency string) {
	if m != nil {
		m.RequestsCreated.WithLabelValues(urgency).Inc()
	}
}

func (m *Metrics) IncrementPledge() {
	if m != nil {
		m.PledgesRecorded.Inc()
	}
}

func (m *Metrics) IncrementRejected(code string) {
	if m != nil {
		m.PledgesRejected.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) IncrementFulfilled() {
	if m != nil {
		m.Fulfilled.Inc()
	}
}

func (m *Metrics) IncrementEmergency() {
	if m != nil {
		m.EmergencyOpened.Inc()
	}
}

func (m *Metrics) AddNotified(n int) {
	if m != nil {
		m.DonorsNotified.Add(float64(n))
	}
}

// ObservePledge records the duration of a pledge. Call with time.Now() at the
// start of the operation.
func (m *Metrics) ObservePledge(start time.Time) {
	if m != nil {
		m.PledgeDuration.Observe(time.Since(start).Seconds())
	}
}
