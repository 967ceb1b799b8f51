// Package telemetry exports patchwork runtime activity to Prometheus and
// OpenTelemetry.
//
//	m := telemetry.NewMetrics(telemetry.WithNamespace("myapp"))
//	rt := vango.NewRuntime(m.Instrument(doc), vango.Config{
//	    Observer: telemetry.NewObserver(m, telemetry.WithTracing(true)),
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Tracing uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given.
package telemetry
