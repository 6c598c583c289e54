// Package metrics holds the Prometheus collectors of the storefront.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns a private registry so several app instances (tests) can
// coexist in one process.
type Metrics struct {
	Registry    *prometheus.Registry
	checkouts   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "checkouts_total",
			Help:      "Checkout attempts by result.",
		}, []string{"result"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "order_transitions_total",
			Help:      "Committed order state changes by axis and target state.",
		}, []string{"axis", "to"}),
	}
	m.Registry.MustRegister(
		m.checkouts,
		m.transitions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCheckout counts one checkout attempt. result is "success" or an
// error kind. Safe on a nil receiver.
func (m *Metrics) ObserveCheckout(result string) {
	if m == nil {
		return
	}
	m.checkouts.WithLabelValues(result).Inc()
}

// ObserveTransition counts one committed change on axis ("status" or
// "payment"). Safe on a nil receiver.
func (m *Metrics) ObserveTransition(axis, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(axis, to).Inc()
}
