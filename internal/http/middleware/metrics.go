// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the Prometheus collectors for cafe API traffic. Every
// series carries the registered route as its path label (for example
// /update-price/:cafe_id), never the raw URL, so ids and probing scanners
// cannot grow the label set. Requests that match no route share
// UnmatchedPath.
//
// Besides the request/latency/size series the API counts its own
// rejections: api-key failures on the write routes, 429s from the rate
// limiter and responses replayed from the idempotency store.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// UnmatchedPath is the path label for requests that hit no route.
const UnmatchedPath = "unmatched"

// pathCounter builds a counter labelled by route only.
func pathCounter(name, help string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, []string{"path"})
}

var (
	httpReqs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Cafe API requests by method, route and status.",
	}, []string{"method", "path", "status"})

	httpLat = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "http_request_duration_seconds",
		Help: "Cafe API request latency in seconds.",
		// single-row SQLite reads sit in the low milliseconds
		Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"method", "path"})

	httpInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_requests_inflight",
		Help: "Cafe API requests currently being served.",
	})

	// One cafe serializes to roughly 300 bytes; /all grows with the table.
	httpRespSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_response_size_bytes",
		Help:    "Cafe API response sizes in bytes.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8), // 256B..4MiB
	}, []string{"method", "path"})

	httpRateLimited = pathCounter("http_rate_limited_total",
		"Requests rejected with 429 by the rate limiter.")
	httpAPIKeyRejected = pathCounter("http_api_key_rejected_total",
		"Write requests rejected with 403 for a missing or wrong api-key.")
	httpIdemReplays = pathCounter("http_idempotent_replays_total",
		"Responses served from the idempotency store instead of the handler.")
)

func init() {
	prometheus.MustRegister(
		httpReqs, httpLat, httpInflight, httpRespSize,
		httpRateLimited, httpAPIKeyRejected, httpIdemReplays,
	)
}

// routeLabel is the path label for c.
func routeLabel(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return UnmatchedPath
}

// Metrics records every request on the HTTP collectors. Mount
// promhttp.Handler() separately to expose them.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInflight.Inc()
		defer httpInflight.Dec()
		start := time.Now()

		c.Next()

		method, path := c.Request.Method, routeLabel(c)
		httpReqs.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(n))
		}
	}
}
