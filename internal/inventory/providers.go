package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/caterstock/billing/internal/inventory/domain"
	"github.com/caterstock/billing/internal/inventory/repository"
	"github.com/caterstock/billing/internal/inventory/usecase/query"
)

// ProvideInventoryRepository provides the traced inventory repository
func ProvideInventoryRepository(db *gorm.DB) *repository.GormInventoryRepositoryWithTracing {
	return repository.NewGormInventoryRepositoryWithTracing(db)
}

func ProvideBatchRepository(repo *repository.GormInventoryRepositoryWithTracing) domain.BatchRepository {
	return repo
}

func ProvideAggregateRepository(repo *repository.GormInventoryRepositoryWithTracing) domain.AggregateRepository {
	return repo
}

// Query Handlers Providers
func ProvideCheckSufficiencyHandler(batches domain.BatchRepository) *query.CheckSufficiencyHandler {
	return query.NewCheckSufficiencyHandler(batches)
}

func ProvideGetAggregateHandler(aggregates domain.AggregateRepository, cache *redis.Client) *query.GetAggregateHandler {
	return query.NewGetAggregateHandler(aggregates, cache)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideInventoryRepository,
	ProvideBatchRepository,
	ProvideAggregateRepository,
)

var QueryHandlerSet = wire.NewSet(
	ProvideCheckSufficiencyHandler,
	ProvideGetAggregateHandler,
)
