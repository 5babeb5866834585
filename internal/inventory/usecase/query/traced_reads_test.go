package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/caterstock/billing/internal/inventory/domain"
	"github.com/caterstock/billing/internal/inventory/repository"
)

func TestQueriesRouteThroughTracedRepository(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	_, db := newTestRepo(t)
	traced := repository.NewGormInventoryRepositoryWithTracing(db)

	seedBatch(t, db, domain.InventoryBatch{ProductID: 1, Label: "A", Quantity: 5, CostPerUnit: 2})

	t.Run("sufficiency check emits a repository span", func(t *testing.T) {
		handler := NewCheckSufficiencyHandler(traced)
		_, err := handler.Handle(context.Background(), CheckSufficiencyQuery{
			Demands: []ProductDemand{{ProductID: 1, Name: "Rice", Quantity: 1}},
		})
		require.NoError(t, err)
		assert.True(t, spanEnded(recorder, "repository.SumAvailable"))
	})

	t.Run("aggregate lookup emits a repository span", func(t *testing.T) {
		require.NoError(t, traced.Upsert(&domain.InventoryAggregate{
			ProductID: 1, TotalQuantity: 5, TotalValue: 10, AverageCost: 2,
		}))

		handler := NewGetAggregateHandler(traced, nil)
		_, err := handler.Handle(context.Background(), GetAggregateQuery{ProductID: 1})
		require.NoError(t, err)
		assert.True(t, spanEnded(recorder, "repository.FindAggregateByProductID"))
	})
}

func spanEnded(recorder *tracetest.SpanRecorder, name string) bool {
	for _, span := range recorder.Ended() {
		if span.Name() == name {
			return true
		}
	}
	return false
}
