package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caterstock/billing/internal/inventory/domain"
	"github.com/caterstock/billing/pkg/logger"
)

const aggregateCacheTTL = 30 * time.Second

func aggregateCacheKey(productID uint) string {
	return fmt.Sprintf("inventory:aggregate:%d", productID)
}

// GetAggregateQuery represents the query to get a product's stock aggregate
type GetAggregateQuery struct {
	ProductID uint
}

// aggregateReaderWithContext is the traced upgrade of the aggregate read,
// implemented by the repository tracing decorator.
type aggregateReaderWithContext interface {
	FindByProductIDWithContext(ctx context.Context, productID uint) (*domain.InventoryAggregate, error)
}

// GetAggregateHandler serves the derived stock snapshot, read-through cached
// in Redis with a short TTL. The cache client is optional; without it every
// lookup goes to the database.
type GetAggregateHandler struct {
	aggregates domain.AggregateRepository
	cache      *redis.Client
}

// NewGetAggregateHandler creates a new get aggregate handler
func NewGetAggregateHandler(aggregates domain.AggregateRepository, cache *redis.Client) *GetAggregateHandler {
	return &GetAggregateHandler{aggregates: aggregates, cache: cache}
}

// Handle executes the get aggregate query
func (h *GetAggregateHandler) Handle(ctx context.Context, query GetAggregateQuery) (*domain.InventoryAggregate, error) {
	if query.ProductID == 0 {
		return nil, fmt.Errorf("product_id is required")
	}

	key := aggregateCacheKey(query.ProductID)

	if h.cache != nil {
		cached, err := h.cache.Get(ctx, key).Bytes()
		if err == nil && len(cached) > 0 {
			var aggregate domain.InventoryAggregate
			if err := json.Unmarshal(cached, &aggregate); err == nil {
				logger.Debug(ctx).Str("cache_key", key).Msg("Aggregate cache hit")
				return &aggregate, nil
			}
		}
	}

	var aggregate *domain.InventoryAggregate
	var err error
	if traced, ok := h.aggregates.(aggregateReaderWithContext); ok {
		aggregate, err = traced.FindByProductIDWithContext(ctx, query.ProductID)
	} else {
		aggregate, err = h.aggregates.FindByProductID(query.ProductID)
	}
	if err != nil {
		return nil, fmt.Errorf("aggregate not found: %w", err)
	}

	if h.cache != nil {
		if payload, err := json.Marshal(aggregate); err == nil {
			if err := h.cache.Set(ctx, key, payload, aggregateCacheTTL).Err(); err != nil {
				logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to cache aggregate")
			}
		}
	}

	return aggregate, nil
}

// InvalidateAggregates drops cached snapshots for the given products. Called
// after a committed sale so readers do not observe pre-deduction stock for
// the full TTL.
func InvalidateAggregates(ctx context.Context, cache *redis.Client, productIDs []uint) {
	if cache == nil || len(productIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, aggregateCacheKey(id))
	}

	if err := cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx).Err(err).Int("count", len(keys)).Msg("Failed to invalidate aggregate cache")
	}
}
