// Copyright 2025 MA-ISA Protocol
//
// Runtime Metrics
// Prometheus collectors for event recording and recovery activity

package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts runtime activity. All counters are optional: a runtime
// built without a registerer carries nil metrics and skips every update.
type Metrics struct {
	EventsRecorded      *prometheus.CounterVec
	RecoveriesApplied   prometheus.Counter
	PersistenceFailures prometheus.Counter
}

// NewMetrics builds and registers the runtime collectors against reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		EventsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "isa",
			Name:      "events_recorded_total",
			Help:      "Events accumulated, by dimension index",
		}, []string{"dimension"}),
		RecoveriesApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isa",
			Name:      "recoveries_applied_total",
			Help:      "Convergence constants applied",
		}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "isa",
			Name:      "persistence_failures_total",
			Help:      "Failed state saves",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.EventsRecorded, m.RecoveriesApplied, m.PersistenceFailures,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) eventRecorded(dimension string) {
	if m != nil {
		m.EventsRecorded.WithLabelValues(dimension).Inc()
	}
}

func (m *Metrics) recoveryApplied() {
	if m != nil {
		m.RecoveriesApplied.Inc()
	}
}

func (m *Metrics) persistenceFailed() {
	if m != nil {
		m.PersistenceFailures.Inc()
	}
}
