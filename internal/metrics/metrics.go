// Package metrics exposes the daemon's Prometheus collectors: document and folder counts,
// searches tracked by the park, and request counters for the HTTP surface.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups every collector the daemon registers, mirroring the observability surface
// the mesh subsystem tracks (peer/chunk/latency gauges) but re-scoped to search-daemon
// concerns: index size, in-flight searches, and request volume.
type Metrics struct {
	DocumentsIndexed prometheus.Gauge
	FoldersIndexed   prometheus.Gauge
	FilterTerms      prometheus.Gauge

	OngoingSearches prometheus.Gauge

	HTTPRequestsTotal *prometheus.CounterVec
	HTTPErrorsTotal   *prometheus.CounterVec

	LocalSearchDuration prometheus.Histogram
}

// New constructs a Metrics and registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchd",
			Subsystem: "index",
			Name:      "documents",
			Help:      "Number of documents currently held in the local index.",
		}),
		FoldersIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchd",
			Subsystem: "index",
			Name:      "folders",
			Help:      "Number of folders currently held in the local index.",
		}),
		FilterTerms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchd",
			Subsystem: "filter",
			Name:      "terms_advertised",
			Help:      "Approximate number of distinct terms advertised by the membership filter.",
		}),
		OngoingSearches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchd",
			Subsystem: "searchpark",
			Name:      "ongoing_searches",
			Help:      "Number of searches currently tracked by the search park.",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests handled, by route.",
		}, []string{"route"}),
		HTTPErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchd",
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total HTTP requests that ended in an error response, by route and kind.",
		}, []string{"route", "kind"}),
		LocalSearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "searchd",
			Subsystem: "index",
			Name:      "local_search_duration_seconds",
			Help:      "Time to drain a local search's result channel.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.DocumentsIndexed,
		m.FoldersIndexed,
		m.FilterTerms,
		m.OngoingSearches,
		m.HTTPRequestsTotal,
		m.HTTPErrorsTotal,
		m.LocalSearchDuration,
	)

	return m
}
