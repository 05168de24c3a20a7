// Package metrics exposes prometheus collectors for the sentiment scorer, the
// resolver and the HTTP API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justestif/go-spotify-moodify/internal/sentiment"
)

const namespace = "moodify"

// Metrics owns a registry and the collectors registered on it.
type Metrics struct {
	registry *prometheus.Registry

	SentimentScores *prometheus.CounterVec
	Resolutions     *prometheus.CounterVec
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics with its own registry. Go runtime and process
// collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SentimentScores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sentiment_scores_total",
			Help:      "Sentiment scores produced, by source.",
		}, []string{"source"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Attribute resolutions, by resolved mood.",
		}, []string{"mood"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method, route and status.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SentimentScores,
		m.Resolutions,
		m.RequestsTotal,
		m.RequestDuration,
	)
	return m
}

// ObserveSentiment counts a score by source. It matches sentiment.WithObserver.
func (m *Metrics) ObserveSentiment(source sentiment.Source) {
	m.SentimentScores.WithLabelValues(string(source)).Inc()
}

// ObserveResolution counts a resolution by mood. It matches moods.WithObserver.
func (m *Metrics) ObserveResolution(mood string) {
	m.Resolutions.WithLabelValues(mood).Inc()
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
