// Package metrics provides Prometheus metrics for container resolutions.
// The collector is a container.Observer: wire it into a container and every
// resolution frame updates the counters and the duration histogram.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-autowire/framework/container"
)

// Collector owns the resolver metrics. Each collector carries its own metric
// instances, so two containers observed by two collectors never share a
// counter.
type Collector struct {
	resolutions *prometheus.CounterVec
	failures    *prometheus.CounterVec
	cacheHits   prometheus.Counter
	duration    prometheus.Histogram
}

var _ container.Observer = (*Collector)(nil)

// NewCollector creates the resolver metric set.
func NewCollector() *Collector {
	return &Collector{
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autowire_resolutions_total",
				Help: "Total number of resolution frames by result",
			},
			[]string{"result"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autowire_resolution_errors_total",
				Help: "Total number of failed resolution frames by error kind",
			},
			[]string{"kind"},
		),
		cacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autowire_cache_hits_total",
				Help: "Total number of resolutions served from the singleton cache",
			},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autowire_resolution_duration_seconds",
				Help:    "Duration of resolution frames",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12),
			},
		),
	}
}

// Register registers every metric with the registry. Duplicate registration
// errors are swallowed, restarts and tests re-register freely.
func (c *Collector) Register(reg prometheus.Registerer) {
	for _, col := range []prometheus.Collector{
		c.resolutions,
		c.failures,
		c.cacheHits,
		c.duration,
	} {
		_ = reg.Register(col)
	}
}

// ObserveResolution implements container.Observer.
func (c *Collector) ObserveResolution(ev container.ResolutionEvent) {
	c.duration.Observe(float64(ev.Duration) / float64(time.Second))

	switch {
	case ev.Err != nil:
		c.resolutions.WithLabelValues("error").Inc()
		c.failures.WithLabelValues(errorKind(ev.Err)).Inc()
	case ev.CacheHit:
		c.resolutions.WithLabelValues("hit").Inc()
		c.cacheHits.Inc()
	default:
		c.resolutions.WithLabelValues("constructed").Inc()
	}
}

// errorKind maps a resolution error onto a bounded label set.
func errorKind(err error) string {
	var (
		notFound    *container.NotFoundError
		ambiguous   *container.AmbiguousError
		cycle       *container.CycleError
		captive     *container.CaptiveError
		noCtor      *container.NoConstructorError
		params      *container.UnsupportedParamsError
		primitive   *container.PrimitiveError
		constructed *container.ConstructionError
		mismatch    *container.TypeMismatchError
	)
	switch {
	case errors.As(err, &notFound):
		return "not_found"
	case errors.As(err, &ambiguous):
		return "ambiguous"
	case errors.As(err, &cycle):
		return "cycle"
	case errors.As(err, &captive):
		return "captive"
	case errors.As(err, &noCtor):
		return "no_constructor"
	case errors.As(err, &params):
		return "unsupported_params"
	case errors.As(err, &primitive):
		return "primitive"
	case errors.As(err, &constructed):
		return "construction"
	case errors.As(err, &mismatch):
		return "type_mismatch"
	default:
		return "other"
	}
}
