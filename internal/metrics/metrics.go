// Package metrics exposes operational counters for the data layer. These are
// operator-facing; the site's visitor statistics pages are a separate concern.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_fetch_total",
		Help: "Category fetches by outcome (fresh, cached, fallback, pending, error).",
	}, []string{"category", "outcome"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_cache_hits_total",
		Help: "Fresh cache hits that skipped the network entirely.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_cache_misses_total",
		Help: "Cache misses that required a network fetch.",
	})

	StaleFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_stale_fallbacks_total",
		Help: "Times a stale cache entry was served because the endpoint failed.",
	})

	ConfigEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "events_config_entries",
		Help: "Active entries in the configuration directory.",
	})

	RowsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "events_rows_discarded_total",
		Help: "Rows dropped for lacking both year and city after mapping.",
	})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
