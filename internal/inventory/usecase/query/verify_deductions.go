package query

import (
	"fmt"

	"github.com/caterstock/billing/internal/inventory/domain"
)

// VerifyDeductionsQuery represents the post-deduction consistency check
type VerifyDeductionsQuery struct {
	SaleID uint
	Items  []domain.DeductionItem
}

// VerifyDeductionsHandler compares the ledger row count written for a sale
// against the count its line items should have produced. A mismatch means the
// engine silently skipped a component and must force rollback.
type VerifyDeductionsHandler struct {
	history domain.DeductionHistoryRepository
}

// NewVerifyDeductionsHandler creates a new verify deductions handler
func NewVerifyDeductionsHandler(history domain.DeductionHistoryRepository) *VerifyDeductionsHandler {
	return &VerifyDeductionsHandler{history: history}
}

// Handle executes the consistency check
func (h *VerifyDeductionsHandler) Handle(query VerifyDeductionsQuery) error {
	if query.SaleID == 0 {
		return fmt.Errorf("sale_id is required")
	}

	var expected int64
	for _, item := range query.Items {
		expected += int64(item.ExpectedRecords())
	}

	actual, err := h.history.CountNegativeBySale(query.SaleID)
	if err != nil {
		return fmt.Errorf("failed to count deduction records: %w", err)
	}

	if actual != expected {
		return &domain.DeductionMismatchError{SaleID: query.SaleID, Expected: expected, Actual: actual}
	}

	return nil
}
