// Package metrics exposes the Prometheus collectors used across the storefront.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Cart counts cart store activity. It satisfies the cart store's recorder port.
type Cart struct {
	applied  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func NewCart(reg prometheus.Registerer) *Cart {
	c := &Cart{
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "commands_applied_total",
			Help:      "Cart commands applied to in-memory state.",
		}, []string{"command"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "commands_rejected_total",
			Help:      "Cart commands rejected by validation.",
		}, []string{"command"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "persistence_failures_total",
			Help:      "Cart storage reads and writes that failed and were recovered locally.",
		}, []string{"op"}),
	}
	reg.MustRegister(c.applied, c.rejected, c.failures)
	return c
}

func (c *Cart) CommandApplied(command string)  { c.applied.WithLabelValues(command).Inc() }
func (c *Cart) CommandRejected(command string) { c.rejected.WithLabelValues(command).Inc() }
func (c *Cart) PersistenceFailed(op string)    { c.failures.WithLabelValues(op).Inc() }

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
