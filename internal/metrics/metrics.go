package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walkmap_queries_total",
		Help: "Total number of walkability queries",
	})
	BlockedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "walkmap_blocked_total",
		Help: "Blocked walkability queries by reason",
	}, []string{"reason"})
	LoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "walkmap_load_duration_ms",
		Help:    "Feature collection load duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	LoadFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walkmap_load_failures_total",
		Help: "Total failed feature collection loads",
	})
	Polygons = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "walkmap_polygons",
		Help: "Collision polygons in the active snapshot by layer",
	}, []string{"layer"})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walkmap_cache_hits_total",
		Help: "Total redis fetch cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "walkmap_cache_misses_total",
		Help: "Total redis fetch cache misses",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(BlockedTotal)
	prometheus.MustRegister(LoadDurationMs)
	prometheus.MustRegister(LoadFailuresTotal)
	prometheus.MustRegister(Polygons)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
