package instrument

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/viewrouter/pkg/router"
)

// Default tracer name.
const defaultTracerName = "viewrouter"

// TracerConfig configures the OpenTelemetry instrumentation.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "viewrouter").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Context is the parent context of every span.
	Context context.Context
}

// TracerOption configures the OpenTelemetry instrumentation.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(p trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = p
	}
}

// WithParentContext sets the context spans are started from.
func WithParentContext(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Context = ctx
	}
}

// Tracer records transitions and resolutions as spans. A transition span
// lives from TransitionStarted to TransitionFinished.
type Tracer struct {
	tracer trace.Tracer
	ctx    context.Context

	mu    sync.Mutex
	spans map[string]trace.Span
}

// NewTracer creates a Tracer.
//
// The tracer uses the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before mounting the
// router.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return &Tracer{
		tracer: tracer,
		ctx:    ctx,
		spans:  make(map[string]trace.Span),
	}
}

// TransitionStarted implements router.Instrumentation.
func (t *Tracer) TransitionStarted(id, url string) {
	_, span := t.tracer.Start(t.ctx, "router.transition",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("router.transition.id", id),
			attribute.String("router.url", url),
		),
	)

	t.mu.Lock()
	t.spans[id] = span
	t.mu.Unlock()
}

// TransitionFinished implements router.Instrumentation.
func (t *Tracer) TransitionFinished(id string, outcome router.Outcome, d time.Duration, err error) {
	t.mu.Lock()
	span, ok := t.spans[id]
	delete(t.spans, id)
	t.mu.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.String("router.outcome", string(outcome)),
		attribute.Int64("router.duration_ms", d.Milliseconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("router.error_code", errorCode(err)))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ResolveFinished implements router.Instrumentation. The span is
// backdated to when the resolution started.
func (t *Tracer) ResolveFinished(route string, d time.Duration, err error) {
	end := time.Now()
	_, span := t.tracer.Start(t.ctx, "router.resolve",
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attribute.String("router.route", route)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}
