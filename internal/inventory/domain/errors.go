package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidDeductionItem is returned when a top-level item carries a missing
// product id or a non-positive quantity.
var ErrInvalidDeductionItem = errors.New("invalid deduction item")

// BatchNotFoundError means no batch with stock exists for the product, even
// after the FIFO fallback.
type BatchNotFoundError struct {
	ProductID uint
	Label     string
}

func (e *BatchNotFoundError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("no inventory batch with stock for product %d (requested batch %q)", e.ProductID, e.Label)
	}
	return fmt.Sprintf("no inventory batch with stock for product %d", e.ProductID)
}

// InsufficientStockError means the selected batch cannot cover the full
// requirement. The engine does not spill a deduction across batches.
type InsufficientStockError struct {
	ProductID  uint
	Name       string
	BatchLabel string
	Available  float64
	Required   float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient quantity in batch %q for %s (product %d): available %.3f, required %.3f",
		e.BatchLabel, e.Name, e.ProductID, e.Available, e.Required)
}

// DeficitError is raised by the sufficiency pre-check when flattened demand
// exceeds available stock for a product.
type DeficitError struct {
	ProductID uint
	Name      string
	Available float64
	Required  float64
}

func (e *DeficitError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (product %d): available %.3f, required %.3f",
		e.Name, e.ProductID, e.Available, e.Required)
}

// DeductionMismatchError means the ledger row count after deduction does not
// match the expected per-item count, indicating a silent partial application.
type DeductionMismatchError struct {
	SaleID   uint
	Expected int64
	Actual   int64
}

func (e *DeductionMismatchError) Error() string {
	return fmt.Sprintf("deduction record count mismatch for sale %d: expected %d, found %d", e.SaleID, e.Expected, e.Actual)
}
