package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krisha_extractions_total",
			Help: "Extractions by kind (listing, detail) and outcome",
		},
		[]string{"kind", "outcome"},
	)

	CardsSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "krisha_cards_skipped_total",
			Help: "Result cards dropped for missing identifiers, title or price",
		},
	)

	AnalyticsSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krisha_analytics_source_total",
			Help: "Where the merged price analytics came from",
		},
		[]string{"source"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krisha_fetch_duration_seconds",
			Help:    "Upstream document fetch latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"target", "status"},
	)

	WatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krisha_watch_runs_total",
			Help: "Scheduled saved-search walks by status",
		},
		[]string{"watch", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "krisha_http_requests_total",
			Help: "API requests served",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "krisha_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)
)

func RecordExtraction(kind, outcome string) {
	ExtractionsTotal.WithLabelValues(kind, outcome).Inc()
}

func RecordSkippedCards(n int) {
	if n > 0 {
		CardsSkippedTotal.Add(float64(n))
	}
}

func RecordAnalyticsSource(source string) {
	AnalyticsSourceTotal.WithLabelValues(source).Inc()
}

// ObserveFetch records one upstream fetch. status is the HTTP status, or 0
// when the transport failed.
func ObserveFetch(target string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	FetchDuration.WithLabelValues(target, label).Observe(d.Seconds())
}

func RecordWatchRun(watch, status string) {
	WatchRunsTotal.WithLabelValues(watch, status).Inc()
}

// GinMiddleware counts and times API requests by route template.
func GinMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
