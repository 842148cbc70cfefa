package donor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks donor registry activity.
type Metrics struct {
	registered          prometheus.Counter
	updated             prometheus.Counter
	availabilityChanges prometheus.Counter
}

// NewMetrics registers donor registry metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_donors_registered_total",
			Help: "Number of new donor profiles registered.",
		}),
		updated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_donors_updated_total",
			Help: "Number of donor profile updates.",
		}),
		availabilityChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_donor_availability_changes_total",
			Help: "Number of donor availability toggles.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.registered, m.updated, m.availabilityChanges)
	}
	return m
}

func (m *Metrics) IncRegistered() {
	if m != nil {
		m.registered.Inc()
	}
}

func (m *Metrics) IncUpdated() {
	if m != nil {
		m.updated.Inc()
	}
}

func (m *Metrics) IncAvailabilityChanged() {
	if m != nil {
		m.availabilityChanges.Inc()
	}
}
