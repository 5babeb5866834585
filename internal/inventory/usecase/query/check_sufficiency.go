package query

import (
	"context"
	"fmt"

	"github.com/caterstock/billing/internal/inventory/domain"
)

// ProductDemand is one flattened requirement: composite items are expanded
// into their components before reaching here.
type ProductDemand struct {
	ProductID  uint
	Name       string
	Quantity   float64
	BatchLabel string
}

// StockStatus reports availability versus demand for one product
type StockStatus struct {
	ProductID    uint    `json:"product_id"`
	Name         string  `json:"name,omitempty"`
	IsSufficient bool    `json:"is_sufficient"`
	Available    float64 `json:"available_quantity"`
	Required     float64 `json:"required_quantity"`
	Deficit      float64 `json:"deficit"`
}

// CheckSufficiencyQuery represents the query to pre-check stock coverage
type CheckSufficiencyQuery struct {
	Demands []ProductDemand
}

// CheckSufficiencyHandler verifies stock covers flattened demand before any
// mutation happens. Read-only: a product with no batches resolves to zero
// availability rather than an error, letting the caller decide how to fail.
type CheckSufficiencyHandler struct {
	batches domain.BatchRepository
}

// NewCheckSufficiencyHandler creates a new check sufficiency handler
func NewCheckSufficiencyHandler(batches domain.BatchRepository) *CheckSufficiencyHandler {
	return &CheckSufficiencyHandler{batches: batches}
}

// batchReaderWithContext is the traced upgrade of the availability read. The
// repository decorator implements it; the plain transaction-scoped repository
// does not, and the handler falls back to the untraced method.
type batchReaderWithContext interface {
	SumAvailableWithContext(ctx context.Context, productID uint, label string) (float64, error)
}

// Handle executes the sufficiency check
func (h *CheckSufficiencyHandler) Handle(ctx context.Context, query CheckSufficiencyQuery) ([]StockStatus, error) {
	type demandKey struct {
		productID uint
		label     string
	}

	// Merge repeated demands for the same product and label, keeping first-seen order.
	merged := make(map[demandKey]*StockStatus)
	var order []demandKey
	for _, d := range query.Demands {
		if d.ProductID == 0 || d.Quantity <= 0 {
			continue
		}
		key := demandKey{productID: d.ProductID, label: d.BatchLabel}
		if status, ok := merged[key]; ok {
			status.Required += d.Quantity
			continue
		}
		merged[key] = &StockStatus{ProductID: d.ProductID, Name: d.Name, Required: d.Quantity}
		order = append(order, key)
	}

	traced, _ := h.batches.(batchReaderWithContext)

	statuses := make([]StockStatus, 0, len(order))
	for _, key := range order {
		status := merged[key]

		var available float64
		var err error
		if traced != nil {
			available, err = traced.SumAvailableWithContext(ctx, key.productID, key.label)
		} else {
			available, err = h.batches.SumAvailable(key.productID, key.label)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to sum available stock for product %d: %w", key.productID, err)
		}

		status.Available = available
		status.IsSufficient = available+domain.QuantityEpsilon >= status.Required
		if !status.IsSufficient {
			status.Deficit = status.Required - available
		}
		statuses = append(statuses, *status)
	}

	return statuses, nil
}
