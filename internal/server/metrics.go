package server

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	analysesTotal   *prometheus.CounterVec
	analyzeLatency  *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codelens",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codelens",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		analysesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "codelens",
			Name:      "analyses_total",
			Help:      "Total number of analyze operations by language, provider and result.",
		}, []string{"language", "provider", "result"}),
		analyzeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "codelens",
			Name:      "analyze_stage_seconds",
			Help:      "Latency of the suggestion and analysis stages of /analyze.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.05,
				0.1, 0.5, 1, 2, 5, 10, 30,
			},
		}, []string{"stage"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
