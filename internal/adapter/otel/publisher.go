package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesaops/stockshift/internal/domain"
)

// TracingNotifier wraps a domain.Notifier with OpenTelemetry tracing.
type TracingNotifier struct {
	next   domain.Notifier
	tracer trace.Tracer
}

// Compile-time check: TracingNotifier implements domain.Notifier.
var _ domain.Notifier = (*TracingNotifier)(nil)

// NewTracingNotifier creates a tracing decorator around the given notifier.
func NewTracingNotifier(next domain.Notifier) *TracingNotifier {
	return &TracingNotifier{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (n *TracingNotifier) Notify(ctx context.Context, action domain.Action, t domain.Transfer, actorID string) error {
	ctx, span := n.tracer.Start(ctx, "Notifier.Notify",
		trace.WithAttributes(
			attribute.String("notification.action", string(action)),
			attribute.String("transfer.id", t.ID),
			attribute.String("tenant.id", t.TenantID),
		),
	)
	defer span.End()

	err := n.next.Notify(ctx, action, t, actorID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// TracingAlerter wraps a domain.VarianceAlerter with OpenTelemetry tracing.
type TracingAlerter struct {
	next   domain.VarianceAlerter
	tracer trace.Tracer
}

// Compile-time check: TracingAlerter implements domain.VarianceAlerter.
var _ domain.VarianceAlerter = (*TracingAlerter)(nil)

// NewTracingAlerter creates a tracing decorator around the given alerter.
func NewTracingAlerter(next domain.VarianceAlerter) *TracingAlerter {
	return &TracingAlerter{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (a *TracingAlerter) TriggerAlert(ctx context.Context, t domain.Transfer, report domain.VarianceReport) error {
	ctx, span := a.tracer.Start(ctx, "VarianceAlerter.TriggerAlert",
		trace.WithAttributes(
			attribute.String("transfer.id", t.ID),
			attribute.String("tenant.id", t.TenantID),
			attribute.Int("variance.units", report.Variance),
			attribute.Float64("variance.percent", report.Percent),
		),
	)
	defer span.End()

	err := a.next.TriggerAlert(ctx, t, report)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
