package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the session counters. A nil *Metrics records nothing.
type Metrics struct {
	logins      *prometheus.CounterVec
	resolutions *prometheus.CounterVec
	logouts     *prometheus.CounterVec
	reaps       *prometheus.CounterVec
}

// NewMetrics registers the session counters with reg.
// It panics if the counters are already registered with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corecms",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corecms",
			Subsystem: "auth",
			Name:      "resolutions_total",
			Help:      "Identity resolutions by result.",
		}, []string{"result"}),
		logouts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corecms",
			Subsystem: "auth",
			Name:      "logouts_total",
			Help:      "Logout attempts by result.",
		}, []string{"result"}),
		reaps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corecms",
			Subsystem: "auth",
			Name:      "reaps_total",
			Help:      "Background token deletions by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) resolution(result string) {
	if m != nil {
		m.resolutions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) logout(result string) {
	if m != nil {
		m.logouts.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) reap(result string) {
	if m != nil {
		m.reaps.WithLabelValues(result).Inc()
	}
}
