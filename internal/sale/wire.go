//go:build wireinject
// +build wireinject

package sale

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/caterstock/billing/internal/sale/delivery/http"
	"github.com/caterstock/billing/kafka"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, publisher *kafka.Publisher, cache *redis.Client) (*http.SaleHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewSaleHandler,
	)
	return nil, nil
}
