// Package metrics holds the Prometheus collectors shared by the site.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sheetsite"

// Registry is the registry served on /metrics. A private registry keeps
// tests free of duplicate-registration panics from the default one.
var Registry = prometheus.NewRegistry()

var (
	UpstreamFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_fetches_total",
		Help:      "Upstream fetch attempts by source and result.",
	}, []string{"source", "result"})

	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_fetch_duration_seconds",
		Help:      "Duration of successful upstream fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Cache lookups by cache name and result (hit or miss).",
	}, []string{"cache", "result"})

	SnapshotFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_fallbacks_total",
		Help:      "Times a stored snapshot was served because the upstream failed.",
	}, []string{"kind"})

	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method and status code.",
	}, []string{"method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})
)

func init() {
	Registry.MustRegister(
		UpstreamFetches,
		UpstreamDuration,
		CacheLookups,
		SnapshotFallbacks,
		HTTPRequests,
		HTTPDuration,
		prometheus.NewGoCollector(),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
