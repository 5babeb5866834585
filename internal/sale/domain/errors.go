package domain

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	invdomain "github.com/caterstock/billing/internal/inventory/domain"
)

// ErrorCode is the closed set of codes surfaced to callers
type ErrorCode string

const (
	ErrCodeDBPoolNotFound           ErrorCode = "DB_POOL_NOT_FOUND"
	ErrCodeMissingRequiredFields    ErrorCode = "MISSING_REQUIRED_FIELDS"
	ErrCodeInvalidItems             ErrorCode = "INVALID_ITEMS"
	ErrCodeInventoryDeductionFailed ErrorCode = "INVENTORY_DEDUCTION_FAILED"
	ErrCodeProductNotFound          ErrorCode = "PRODUCT_NOT_FOUND"
	ErrCodeInsufficientInventory    ErrorCode = "INSUFFICIENT_INVENTORY"
	ErrCodeDuplicateBillNumber      ErrorCode = "DUPLICATE_BILL_NUMBER"
	ErrCodeUnknown                  ErrorCode = "UNKNOWN_ERROR"
)

// SaleError is the single error surface of the sale orchestrator
type SaleError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *SaleError) Error() string {
	return e.Message
}

func (e *SaleError) Unwrap() error {
	return e.Err
}

// NewSaleError creates a typed sale error
func NewSaleError(code ErrorCode, message string, err error) *SaleError {
	return &SaleError{Code: code, Message: message, Err: err}
}

// HTTPStatus maps an error code to its response status
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeMissingRequiredFields, ErrCodeInvalidItems:
		return http.StatusBadRequest
	case ErrCodeProductNotFound:
		return http.StatusNotFound
	case ErrCodeInsufficientInventory, ErrCodeDuplicateBillNumber:
		return http.StatusConflict
	case ErrCodeDBPoolNotFound:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Classify catches any error raised inside the transaction scope once, at the
// orchestrator boundary, and maps it to exactly one code.
func Classify(err error) *SaleError {
	var saleErr *SaleError
	if errors.As(err, &saleErr) {
		return saleErr
	}

	var batchNotFound *invdomain.BatchNotFoundError
	if errors.As(err, &batchNotFound) {
		return NewSaleError(ErrCodeProductNotFound, batchNotFound.Error(), err)
	}

	var insufficient *invdomain.InsufficientStockError
	if errors.As(err, &insufficient) {
		return NewSaleError(ErrCodeInsufficientInventory, insufficient.Error(), err)
	}

	var deficit *invdomain.DeficitError
	if errors.As(err, &deficit) {
		return NewSaleError(ErrCodeInsufficientInventory, deficit.Error(), err)
	}

	var mismatch *invdomain.DeductionMismatchError
	if errors.As(err, &mismatch) {
		return NewSaleError(ErrCodeInventoryDeductionFailed, mismatch.Error(), err)
	}

	if errors.Is(err, invdomain.ErrInvalidDeductionItem) {
		return NewSaleError(ErrCodeInvalidItems, err.Error(), err)
	}

	if isDuplicateKey(err) {
		return NewSaleError(ErrCodeDuplicateBillNumber, "bill number already exists", err)
	}

	return NewSaleError(ErrCodeUnknown, err.Error(), err)
}

// isDuplicateKey recognizes uniqueness violations from the drivers in use
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
