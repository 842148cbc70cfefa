package match

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks matching activity.
type Metrics struct {
	confirmed   prometheus.Counter
	suggestions prometheus.Counter
}

// NewMetrics registers matching metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		confirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_matches_confirmed_total",
			Help: "Number of confirmed donor matches.",
		}),
		suggestions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lifelink_match_suggestions_total",
			Help: "Number of best-match suggestions produced.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.confirmed, m.suggestions)
	}
	return m
}

func (m *Metrics) IncConfirmed() {
	if m != nil {
		m.confirmed.Inc()
	}
}

func (m *Metrics) IncSuggestion() {
	if m != nil {
		m.suggestions.Inc()
	}
}
