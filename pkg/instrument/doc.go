// Package instrument provides router.Instrumentation implementations backed
// by Prometheus and OpenTelemetry.
//
// Metrics collected by NewMetrics (namespace "viewrouter" by default):
//   - transitions_total: counter of finished transitions by outcome
//   - transition_duration_seconds: histogram of transition durations by outcome
//   - transitions_in_flight: gauge of started but unfinished transitions
//   - transition_errors_total: counter of failed transitions by error code
//   - resolves_total: counter of route resolutions by status
//   - resolve_duration_seconds: histogram of resolution durations
//
// Example:
//
//	metrics := instrument.NewMetrics(instrument.WithRegistry(reg))
//	tracer := instrument.NewTracer(instrument.WithTracerName("shop"))
//	r, err := router.New(routes, router.WithInstrumentation(instrument.Multi(metrics, tracer)))
package instrument
