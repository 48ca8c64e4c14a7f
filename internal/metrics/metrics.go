// Package metrics exposes Prometheus counters for tracking operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/terraincognita07/sitr/internal/models"
)

// Collector records operation outcomes and appended events.
type Collector struct {
	operations *prometheus.CounterVec
	events     *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitr_operations_total",
			Help: "Tracking operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitr_events_appended_total",
			Help: "Committed events by action.",
		}, []string{"action"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitr_operation_duration_seconds",
			Help:    "Tracking operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.operations,
		c.events,
		c.latency,
	)

	return c
}

func (c *Collector) ObserveOperation(operation string, outcome string, elapsed time.Duration) {
	c.operations.WithLabelValues(operation, outcome).Inc()
	c.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (c *Collector) CountEvent(action models.Action) {
	c.events.WithLabelValues(string(action)).Inc()
}

// Handler serves the metrics of gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
