package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mesaops/stockshift/internal/domain"
)

const tracerName = "github.com/mesaops/stockshift/internal/adapter/otel"

// TracingRepository wraps a domain.TransferRepository with OpenTelemetry
// tracing. Each method creates a span with semantic attributes and
// records errors.
type TracingRepository struct {
	next   domain.TransferRepository
	tracer trace.Tracer
}

// Compile-time check: TracingRepository implements domain.TransferRepository.
var _ domain.TransferRepository = (*TracingRepository)(nil)

// NewTracingRepository creates a tracing decorator around the given repository.
func NewTracingRepository(next domain.TransferRepository) *TracingRepository {
	return &TracingRepository{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRepository) Create(ctx context.Context, t domain.Transfer) error {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.Create",
		trace.WithAttributes(
			attribute.String("transfer.id", t.ID),
			attribute.String("tenant.id", t.TenantID),
			attribute.String("transfer.priority", string(t.Priority)),
		),
	)
	defer span.End()

	err := r.next.Create(ctx, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *TracingRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Transfer, error) {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.GetByID",
		trace.WithAttributes(
			attribute.String("transfer.id", id),
			attribute.String("tenant.id", tenantID),
		),
	)
	defer span.End()

	t, err := r.next.GetByID(ctx, tenantID, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return t, err
}

func (r *TracingRepository) List(ctx context.Context, tenantID string, filter domain.ListFilter) ([]domain.Transfer, error) {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.List",
		trace.WithAttributes(
			attribute.String("tenant.id", tenantID),
			attribute.Int("filter.limit", filter.Limit),
			attribute.Int("filter.offset", filter.Offset),
		),
	)
	defer span.End()

	if filter.LocationID != "" {
		span.SetAttributes(attribute.String("filter.location_id", filter.LocationID))
	}
	if filter.Status != nil {
		span.SetAttributes(attribute.String("filter.status", string(*filter.Status)))
	}

	transfers, err := r.next.List(ctx, tenantID, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("result.count", len(transfers)))
	}
	return transfers, err
}

func (r *TracingRepository) UpdateGuarded(ctx context.Context, t domain.Transfer, expected domain.Status) error {
	ctx, span := r.tracer.Start(ctx, "TransferRepository.UpdateGuarded",
		trace.WithAttributes(
			attribute.String("transfer.id", t.ID),
			attribute.String("tenant.id", t.TenantID),
			attribute.String("transfer.status", string(t.Status)),
			attribute.String("transfer.expected_status", string(expected)),
		),
	)
	defer span.End()

	err := r.next.UpdateGuarded(ctx, t, expected)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
