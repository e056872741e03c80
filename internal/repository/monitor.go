package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"blogapi/internal/tracing"
)

type commandKey struct {
	connectionID string
	requestID    int64
}

// commandTracer turns driver command events into client spans.
type commandTracer struct {
	tracer trace.Tracer
	spans  sync.Map // commandKey -> trace.Span
}

// NewCommandMonitor returns a monitor that opens a span when a command is
// sent and ends it when the reply or failure arrives.
func NewCommandMonitor(tp trace.TracerProvider) *event.CommandMonitor {
	ct := &commandTracer{tracer: tp.Tracer(tracing.ScopeMongoDB)}
	return &event.CommandMonitor{
		Started:   ct.started,
		Succeeded: ct.succeeded,
		Failed:    ct.failed,
	}
}

func (ct *commandTracer) started(ctx context.Context, evt *event.CommandStartedEvent) {
	collection, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()

	name := evt.CommandName
	if collection != "" {
		name = collection + "." + evt.CommandName
	}

	_, span := ct.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemMongoDB,
			semconv.DBName(evt.DatabaseName),
			semconv.DBOperation(evt.CommandName),
			attribute.String("db.mongodb.collection", collection),
		),
	)
	ct.spans.Store(commandKey{evt.ConnectionID, evt.RequestID}, span)
}

func (ct *commandTracer) succeeded(_ context.Context, evt *event.CommandSucceededEvent) {
	if span, ok := ct.finish(evt.ConnectionID, evt.RequestID); ok {
		span.End()
	}
}

func (ct *commandTracer) failed(_ context.Context, evt *event.CommandFailedEvent) {
	if span, ok := ct.finish(evt.ConnectionID, evt.RequestID); ok {
		span.SetStatus(codes.Error, evt.Failure)
		span.End()
	}
}

func (ct *commandTracer) finish(connectionID string, requestID int64) (trace.Span, bool) {
	v, ok := ct.spans.LoadAndDelete(commandKey{connectionID, requestID})
	if !ok {
		return nil, false
	}
	return v.(trace.Span), true
}
