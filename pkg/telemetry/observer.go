package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/patchwork/pkg/vango"
)

// Observer feeds scheduler activity into Metrics and, when tracing is
// enabled, one span per pass with an event per re-render.
type Observer struct {
	metrics *Metrics
	tracer  trace.Tracer
	tracing bool
}

var _ vango.Observer = (*Observer)(nil)

// NewObserver creates an observer recording into m, which may be nil.
func NewObserver(m *Metrics, opts ...Option) *Observer {
	config := newConfig(opts)
	return &Observer{
		metrics: m,
		tracer:  config.TracerProvider.Tracer(config.TracerName),
		tracing: config.Tracing,
	}
}

// BeginPass starts the pass span.
func (o *Observer) BeginPass(ctx context.Context, pass uint64) context.Context {
	if !o.tracing {
		return ctx
	}
	ctx, _ = o.tracer.Start(ctx, "patchwork.pass",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.Int64("patchwork.pass", int64(pass))),
	)
	return ctx
}

// EndPass records the pass and ends its span.
func (o *Observer) EndPass(ctx context.Context, stats vango.PassStats) {
	o.metrics.RecordPass(stats.Elapsed, stats.Skipped)
	if !o.tracing {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("patchwork.updates", stats.Updates),
		attribute.Int("patchwork.rerenders", stats.Rerenders),
		attribute.Int("patchwork.skipped", stats.Skipped),
	)
	span.End()
}

// Updated records an applied message.
func (o *Observer) Updated(_ context.Context, _ *vango.Node, rerender bool) {
	o.metrics.RecordUpdate(rerender)
}

// Rerendered records a re-render.
func (o *Observer) Rerendered(ctx context.Context, n *vango.Node, elapsed time.Duration) {
	o.metrics.RecordRerender(n.Name(), elapsed)
	if !o.tracing {
		return
	}
	trace.SpanFromContext(ctx).AddEvent("rerender", trace.WithAttributes(
		attribute.String("patchwork.component", n.Name()),
		attribute.Int64("patchwork.node_id", int64(n.ID())),
		attribute.Int64("patchwork.depth", int64(n.Depth())),
		attribute.Int64("patchwork.duration_us", elapsed.Microseconds()),
	))
}
