// Package metrics holds the prometheus collectors notiq exports on the MCP
// HTTP transport.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Mutations counts store operations by name and outcome (ok, invalid,
	// not_found, persistence).
	Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notiq",
		Name:      "store_mutations_total",
		Help:      "Store mutations by operation and outcome.",
	}, []string{"op", "outcome"})

	// Items tracks the size of each collection after the latest reload.
	Items = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "notiq",
		Name:      "store_items",
		Help:      "Records held in memory per collection.",
	}, []string{"collection"})

	// Fetches counts place service calls by service and outcome.
	Fetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "notiq",
		Name:      "place_fetches_total",
		Help:      "Location search and study place fetches by outcome.",
	}, []string{"service", "outcome"})

	// StaleResults counts fetch results dropped because a newer one was applied.
	StaleResults = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "notiq",
		Name:      "place_stale_results_total",
		Help:      "Study place results discarded as stale.",
	})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(Mutations, Items, Fetches, StaleResults)
}

// Handler serves the notiq registry in the prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
