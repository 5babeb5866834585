package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/caterstock/billing/internal/inventory/domain"
)

var tracer = otel.Tracer("inventory-repository")

// GormInventoryRepositoryWithTracing wraps GormInventoryRepository with
// tracing on the delivery-layer read paths. The query handlers detect the
// *WithContext variants by interface assertion and route reads through them;
// transaction-scoped writes stay on the plain repository.
type GormInventoryRepositoryWithTracing struct {
	*GormInventoryRepository
}

// NewGormInventoryRepositoryWithTracing creates a new repository with tracing
func NewGormInventoryRepositoryWithTracing(db *gorm.DB) *GormInventoryRepositoryWithTracing {
	return &GormInventoryRepositoryWithTracing{
		GormInventoryRepository: NewGormInventoryRepository(db),
	}
}

// SumAvailableWithContext with tracing
func (r *GormInventoryRepositoryWithTracing) SumAvailableWithContext(ctx context.Context, productID uint, label string) (float64, error) {
	_, span := tracer.Start(ctx, "repository.SumAvailable",
		trace.WithAttributes(
			attribute.Int("batch.product_id", int(productID)),
			attribute.String("batch.label", label),
		),
	)
	defer span.End()

	total, err := r.GormInventoryRepository.SumAvailable(productID, label)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Float64("batch.available", total))
	return total, nil
}

// FindByProductIDWithContext with tracing
func (r *GormInventoryRepositoryWithTracing) FindByProductIDWithContext(ctx context.Context, productID uint) (*domain.InventoryAggregate, error) {
	_, span := tracer.Start(ctx, "repository.FindAggregateByProductID",
		trace.WithAttributes(
			attribute.Int("aggregate.product_id", int(productID)),
		),
	)
	defer span.End()

	aggregate, err := r.GormInventoryRepository.FindByProductID(productID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("aggregate.total_quantity", aggregate.TotalQuantity),
		attribute.Float64("aggregate.average_cost", aggregate.AverageCost),
	)
	return aggregate, nil
}
