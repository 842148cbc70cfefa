package request

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks request registry activity.
type Metrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
}

// NewMetrics registers request registry metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_requests_created_total",
			Help: "Number of blood requests created.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lifelink_request_transitions_total",
			Help: "Number of request status transitions, by target status.",
		}, []string{"to"}),
	}
	if reg != nil {
		reg.MustRegister(m.created, m.transitions)
	}
	return m
}

func (m *Metrics) IncCreated() {
	if m != nil {
		m.created.Inc()
	}
}

func (m *Metrics) IncTransition(to string) {
	if m != nil {
		m.transitions.WithLabelValues(to).Inc()
	}
}
