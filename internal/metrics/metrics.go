// Package metrics holds the Prometheus collectors for scraping and stream resolution.  Everything is registered on
// a dedicated registry so the `serve` command can expose exactly these series (plus Go runtime stats).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultEmpty   = "empty"
	ResultBlocked = "blocked"
	ResultMissing = "identifier_missing"
)

// Request kinds for the upstream latency histogram
const (
	KindDirectory   = "directory"
	KindChannelPage = "channel_page"
	KindAjax        = "ajax"
)

var (
	Registry = prometheus.NewRegistry()

	DirectoryFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotv_directory_fetches_total",
		Help: "Upstream channel directory scrapes by result.",
	}, []string{"result"})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotv_directory_cache_lookups_total",
		Help: "Channel directory cache lookups by outcome (hit, miss, shared).",
	}, []string{"outcome"})

	StreamResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rotv_stream_resolutions_total",
		Help: "Stream resolutions by result.",
	}, []string{"result"})

	UpstreamDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rotv_upstream_request_duration_seconds",
		Help:    "Latency of requests to the provider.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

func init() {
	Registry.MustRegister(
		DirectoryFetches,
		CacheLookups,
		StreamResolutions,
		UpstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveUpstream records how long a request of the given kind took
func ObserveUpstream(kind string, start time.Time) {
	UpstreamDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
