package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for patchwork runtimes.
const defaultTracerName = "patchwork"

// Config configures metrics and tracing.
type Config struct {
	// Namespace is the metrics namespace (default: "patchwork").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass and render durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the name of the tracer (default: "patchwork").
	TracerName string

	// TracerProvider supplies the tracer. Default: the global provider.
	TracerProvider trace.TracerProvider

	// Tracing enables spans for scheduler passes.
	Tracing bool
}

// Option configures telemetry.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithTracing enables or disables pass spans.
func WithTracing(enabled bool) Option {
	return func(c *Config) {
		c.Tracing = enabled
	}
}

// defaultConfig returns the default telemetry configuration.
func defaultConfig() Config {
	return Config{
		Namespace:  "patchwork",
		Buckets:    prometheus.DefBuckets,
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
	}
}

func newConfig(opts []Option) Config {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.TracerProvider == nil {
		config.TracerProvider = otel.GetTracerProvider()
	}
	return config
}
