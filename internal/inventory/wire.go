//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/caterstock/billing/internal/inventory/delivery/http"
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, cache *redis.Client) (*http.InventoryHandler, error) {
	wire.Build(
		RepositorySet,
		QueryHandlerSet,
		http.NewInventoryHandler,
	)
	return nil, nil
}
