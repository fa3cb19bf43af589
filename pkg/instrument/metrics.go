package instrument

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/viewrouter/internal/errors"
	"github.com/vango-dev/viewrouter/pkg/router"
)

// MetricsConfig configures the Prometheus instrumentation.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "viewrouter").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus instrumentation.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "viewrouter",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records transitions and resolutions as Prometheus metrics.
type Metrics struct {
	transitions       *prometheus.CounterVec
	transitionLatency *prometheus.HistogramVec
	inFlight          prometheus.Gauge
	transitionErrors  *prometheus.CounterVec
	resolves          *prometheus.CounterVec
	resolveLatency    prometheus.Histogram
}

// NewMetrics registers the router metrics with the configured registry.
// It panics if the metrics are already registered there.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_total",
			Help:        "Total number of finished route transitions",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		transitionLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transition_duration_seconds",
			Help:        "Route transition duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"outcome"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transitions_in_flight",
			Help:        "Number of route transitions started but not finished",
			ConstLabels: config.ConstLabels,
		}),

		transitionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "transition_errors_total",
			Help:        "Total number of failed route transitions by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		resolves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolves_total",
			Help:        "Total number of deferred route resolutions",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		resolveLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolve_duration_seconds",
			Help:        "Deferred route resolution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// TransitionStarted implements router.Instrumentation.
func (m *Metrics) TransitionStarted(string, string) {
	m.inFlight.Inc()
}

// TransitionFinished implements router.Instrumentation.
func (m *Metrics) TransitionFinished(_ string, outcome router.Outcome, d time.Duration, err error) {
	m.inFlight.Dec()
	m.transitions.WithLabelValues(string(outcome)).Inc()
	m.transitionLatency.WithLabelValues(string(outcome)).Observe(d.Seconds())
	if err != nil {
		m.transitionErrors.WithLabelValues(errorCode(err)).Inc()
	}
}

// ResolveFinished implements router.Instrumentation.
func (m *Metrics) ResolveFinished(_ string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.resolves.WithLabelValues(status).Inc()
	m.resolveLatency.Observe(d.Seconds())
}

// errorCode returns the route error code of err, or "unknown".
func errorCode(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "unknown"
}
