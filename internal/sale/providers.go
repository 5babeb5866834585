package sale

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/caterstock/billing/internal/sale/domain"
	"github.com/caterstock/billing/internal/sale/repository"
	"github.com/caterstock/billing/internal/sale/usecase/command"
	"github.com/caterstock/billing/internal/sale/usecase/query"
	"github.com/caterstock/billing/kafka"
)

// ProvideSaleRepository provides the sale repository
func ProvideSaleRepository(db *gorm.DB) domain.SaleRepository {
	return repository.NewGormSaleRepository(db)
}

// Command Handlers Providers
func ProvideCreateSaleHandler(db *gorm.DB, publisher *kafka.Publisher, cache *redis.Client) *command.CreateSaleHandler {
	return command.NewCreateSaleHandler(db, publisher, cache)
}

// Query Handlers Providers
func ProvideGetSaleHandler(repo domain.SaleRepository) *query.GetSaleHandler {
	return query.NewGetSaleHandler(repo)
}

func ProvideListSalesHandler(repo domain.SaleRepository) *query.ListSalesHandler {
	return query.NewListSalesHandler(repo)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideSaleRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateSaleHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetSaleHandler,
	ProvideListSalesHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)
