// Package metrics holds the Prometheus collectors for the store and its
// persistence writer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	intents        *prometheus.CounterVec
	persistWrites  *prometheus.CounterVec
	rehydrated     *prometheus.CounterVec
	activeSessions prometheus.Gauge
	subscribers    prometheus.Gauge
}

// New registers the collectors on reg under the "bookstore" namespace.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		intents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookstore",
			Subsystem: "store",
			Name:      "intents_total",
			Help:      "Intents dispatched, by intent and whether state changed.",
		}, []string{"intent", "changed"}),
		persistWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookstore",
			Subsystem: "store",
			Name:      "persist_writes_total",
			Help:      "Persisted slice writes, by key, operation and result.",
		}, []string{"key", "op", "result"}),
		rehydrated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookstore",
			Subsystem: "store",
			Name:      "rehydrated_slices_total",
			Help:      "Slices read at startup, by key and outcome (loaded, absent, invalid, error).",
		}, []string{"key", "outcome"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookstore",
			Name:      "active_sessions",
			Help:      "Open session stores.",
		}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookstore",
			Subsystem: "store",
			Name:      "subscribers",
			Help:      "Registered state listeners across stores.",
		}),
	}
}

func (m *Metrics) Intent(name string, changed bool) {
	if m == nil {
		return
	}
	c := "false"
	if changed {
		c = "true"
	}
	m.intents.WithLabelValues(name, c).Inc()
}

func (m *Metrics) PersistWrite(key, op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.persistWrites.WithLabelValues(key, op, result).Inc()
}

func (m *Metrics) Rehydrated(key, outcome string) {
	if m == nil {
		return
	}
	m.rehydrated.WithLabelValues(key, outcome).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) SubscriberAdded() {
	if m == nil {
		return
	}
	m.subscribers.Inc()
}

func (m *Metrics) SubscriberRemoved() {
	if m == nil {
		return
	}
	m.subscribers.Dec()
}
