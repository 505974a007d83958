package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search orchestration Prometheus metrics.
var (
	RoutesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "routes_total",
			Help:      "Total routing decisions by chosen route",
		},
		[]string{"route"},
	)

	AdapterRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "adapter_requests_total",
			Help:      "Total search adapter requests",
		},
		[]string{"source", "status"},
	)

	AdapterRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "unisearch",
			Name:      "adapter_request_duration_seconds",
			Help:      "Search adapter request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	AnswerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "answer_cache_total",
			Help:      "Answer cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	StreamChunksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "unisearch",
			Name:      "stream_chunks_total",
			Help:      "Stream chunks delivered by pacing schedule",
		},
		[]string{"schedule"}, // "fresh" / "cached"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(RoutesTotal)
	prometheus.MustRegister(AdapterRequestsTotal)
	prometheus.MustRegister(AdapterRequestDuration)
	prometheus.MustRegister(AnswerCacheTotal)
	prometheus.MustRegister(StreamChunksTotal)
	searchMetricsRegistered = true
}
