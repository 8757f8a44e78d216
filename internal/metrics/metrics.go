// Package metrics exposes Prometheus collectors for outbound API calls.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records call counts, latencies and rate-limit waits. It is safe
// for concurrent use. A nil *Collector records nothing.
type Collector struct {
	callsTotal    *prometheus.CounterVec
	callDuration  *prometheus.HistogramVec
	rateLimitWait prometheus.Histogram
	errorsTotal   *prometheus.CounterVec
}

// New registers the collectors on registry. A nil registry uses the default
// Prometheus registerer.
func New(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Collector{
		callsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicaller_calls_total",
				Help: "Total number of API calls by method and status code",
			},
			[]string{"method", "status"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "apicaller_call_duration_seconds",
				Help:    "Duration of API calls in seconds, excluding rate-limit waits",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		rateLimitWait: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "apicaller_rate_limit_wait_seconds",
				Help:    "Time spent waiting for the shared rate limiter",
				Buckets: []float64{0, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apicaller_errors_total",
				Help: "Total number of failed API calls by method and error kind",
			},
			[]string{"method", "kind"},
		),
	}
}

// RecordCall records one completed round trip. status 0 means no response
// was received.
func (c *Collector) RecordCall(method string, status int, duration time.Duration) {
	if c == nil {
		return
	}

	c.callsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.callDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordWait records time spent in the rate limiter.
func (c *Collector) RecordWait(wait time.Duration) {
	if c == nil {
		return
	}

	c.rateLimitWait.Observe(wait.Seconds())
}

// RecordError records a failed call. kind is a short classifier such as
// "status", "decode" or "transport".
func (c *Collector) RecordError(method, kind string) {
	if c == nil {
		return
	}

	c.errorsTotal.WithLabelValues(method, kind).Inc()
}
