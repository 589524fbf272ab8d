// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cassa"

// Checkouts counts checkout attempts by outcome (finalized, declined, failed).
var Checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "pos",
	Name:      "checkouts_total",
	Help:      "Checkout attempts by outcome.",
}, []string{"outcome"})

// SalesDeleted counts deleted sale records.
var SalesDeleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "pos",
	Name:      "sales_deleted_total",
	Help:      "Sale records deleted.",
})

// ReportBuilds counts built reports by whether expense data was available.
var ReportBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "report",
	Name:      "builds_total",
	Help:      "Monthly reports built, by expense availability.",
}, []string{"expenses"})

// ReportCacheHits counts reports served from cache.
var ReportCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "report",
	Name:      "cache_hits_total",
	Help:      "Monthly reports served from cache.",
})

// ReportBuildDuration observes load plus aggregation time.
var ReportBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "report",
	Name:      "build_duration_seconds",
	Help:      "Time to load history and build a monthly report.",
	Buckets:   prometheus.DefBuckets,
})

// EventsPublished counts outgoing domain events by type and result.
var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "events",
	Name:      "published_total",
	Help:      "Domain events published, by type and result.",
}, []string{"type", "result"})

// RateLimited counts write requests rejected by the rate limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the per-client rate limiter.",
})

// HTTPRequests counts served requests by method, route pattern and status.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, route and status code.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

// Availability returns the label value for expense availability.
func Availability(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}

// Middleware records HTTPRequests and HTTPDuration using the matched chi
// route pattern, so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
