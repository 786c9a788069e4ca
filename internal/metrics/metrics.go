// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatialintel_events_created_total",
		Help: "Total number of events persisted",
	})
	EventQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spatialintel_event_queries_total",
		Help: "Total number of gateway reads by kind (select, count)",
	}, []string{"kind"})
	TrendResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spatialintel_trend_results_total",
		Help: "Trend analyses by resulting label",
	}, []string{"trend"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "spatialintel_rate_limited_total",
		Help: "Requests rejected by the ingestion rate limiter",
	})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spatialintel_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route", "method"})
)

func init() {
	prometheus.MustRegister(EventsCreatedTotal)
	prometheus.MustRegister(EventQueriesTotal)
	prometheus.MustRegister(TrendResultsTotal)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(RequestDurationMs)
}

// Handler exposes the registered collectors for scraping
func Handler() http.Handler { return promhttp.Handler() }
