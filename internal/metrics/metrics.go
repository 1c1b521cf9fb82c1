// Package metrics exposes Prometheus instrumentation for the totals engine,
// draft editing and the HTTP layer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "khata"

// Recorder holds the service collectors. A nil *Recorder records nothing,
// so callers never need to check whether metrics are enabled.
type Recorder struct {
	registry *prometheus.Registry

	recomputes      *prometheus.CounterVec
	recomputeTime   prometheus.Histogram
	overrides       *prometheus.CounterVec
	submits         *prometheus.CounterVec
	sideEffectFails *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, plus the Go runtime and
// process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "Document totals recomputations by change kind.",
		}, []string{"change"}),
		recomputeTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recompute_duration_seconds",
			Help:      "Time spent in a single totals recomputation.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overrides_total",
			Help:      "Manual overrides typed by users, by target.",
		}, []string{"target"}),
		submits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submits_total",
			Help:      "Draft submissions by document type and result.",
		}, []string{"doc_type", "result"}),
		sideEffectFails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_side_effect_failures_total",
			Help:      "Post-persist submit steps that failed, by step.",
		}, []string{"step"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.recomputes, r.recomputeTime, r.overrides, r.submits, r.sideEffectFails,
		r.httpRequests, r.httpDuration,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveRecompute counts one engine run.
func (r *Recorder) ObserveRecompute(change string, took time.Duration) {
	if r == nil {
		return
	}
	r.recomputes.WithLabelValues(change).Inc()
	r.recomputeTime.Observe(took.Seconds())
}

// IncOverride counts a manual override.
func (r *Recorder) IncOverride(target string) {
	if r == nil {
		return
	}
	r.overrides.WithLabelValues(target).Inc()
}

// IncSubmit counts a submission outcome.
func (r *Recorder) IncSubmit(docType, result string) {
	if r == nil {
		return
	}
	r.submits.WithLabelValues(docType, result).Inc()
}

// IncSideEffectFailure counts a failed post-persist step.
func (r *Recorder) IncSideEffectFailure(step string) {
	if r == nil {
		return
	}
	r.sideEffectFails.WithLabelValues(step).Inc()
}

// GinMiddleware records request counts and latency by matched route.
func (r *Recorder) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r == nil {
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
		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
