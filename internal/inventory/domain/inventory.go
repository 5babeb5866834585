package domain

import (
	"time"
)

// Batch statuses
const (
	BatchStatusActive  = "active"
	BatchStatusMerged  = "merged"
	BatchStatusExpired = "expired"
)

// ReferenceTypeCatererSale tags ledger rows written for caterer sale deductions
const ReferenceTypeCatererSale = "caterer_sale"

// QuantityEpsilon is the tolerance for stock comparisons. A batch whose
// remaining quantity falls at or below it is deleted instead of being kept
// as a near-zero row.
const QuantityEpsilon = 0.001

// InventoryBatch represents one physical lot of a product. Batches are only
// ever decremented or deleted here; they are created by the receiving side.
// CreatedAt drives FIFO selection. No soft delete: an exhausted batch row is
// removed entirely.
type InventoryBatch struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProductID   uint      `json:"product_id" gorm:"not null;index"`
	Label       string    `json:"label" gorm:"not null;index"`
	Quantity    float64   `json:"quantity" gorm:"not null"`
	CostPerUnit float64   `json:"cost_per_unit" gorm:"not null"`
	Value       float64   `json:"value"`
	Unit        string    `json:"unit"`
	Status      string    `json:"status" gorm:"default:'active'"` // active, merged, expired
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (InventoryBatch) TableName() string {
	return "inventory_batches"
}

// DeductionRecord is one row of the append-only inventory ledger. Quantity is
// negative on deduction; CostPerUnit is the batch acquisition cost, not the
// selling rate. Rows are immutable once written.
type DeductionRecord struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProductID     uint      `json:"product_id" gorm:"not null;index"`
	Quantity      float64   `json:"quantity" gorm:"not null"`
	BatchLabel    string    `json:"batch_label"`
	CostPerUnit   float64   `json:"cost_per_unit"`
	Value         float64   `json:"value"`
	Unit          string    `json:"unit"`
	Note          string    `json:"note" gorm:"type:text"`
	ReferenceType string    `json:"reference_type" gorm:"index"`
	ReferenceID   uint      `json:"reference_id" gorm:"index"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name
func (DeductionRecord) TableName() string {
	return "inventory_deduction_records"
}

// InventoryAggregate is the derived per-product stock snapshot. It is always
// recomputed from live non-merged batches and upserted whole, never patched
// incrementally, so it cannot drift.
type InventoryAggregate struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProductID     uint      `json:"product_id" gorm:"not null;uniqueIndex"`
	TotalQuantity float64   `json:"total_quantity"`
	TotalValue    float64   `json:"total_value"`
	AverageCost   float64   `json:"average_cost"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (InventoryAggregate) TableName() string {
	return "inventory_aggregates"
}

// DeductionItem is one top-level unit of work for the deduction engine. A
// composite item carries its components; each component is deducted as an
// independent regular item, inheriting the composite's batch label when it
// names none.
type DeductionItem struct {
	ProductID   *uint
	Name        string
	Quantity    float64
	Unit        string
	BatchLabel  string
	IsComposite bool
	Components  []DeductionItem
}

// ExpectedRecords returns how many ledger rows this item should produce:
// one per component for a composite, one for a simple item.
func (i DeductionItem) ExpectedRecords() int {
	if i.IsComposite || len(i.Components) > 0 {
		return len(i.Components)
	}
	return 1
}

// BatchRepository defines the contract for batch data access. Lookups that
// find no row return (nil, nil) so callers can decide how to fail.
type BatchRepository interface {
	FindByLabel(productID uint, label string) (*InventoryBatch, error)
	FindOldestWithStock(productID uint) (*InventoryBatch, error)
	FindByID(id uint) (*InventoryBatch, error)
	FindLiveByProduct(productID uint) ([]InventoryBatch, error)
	SumAvailable(productID uint, label string) (float64, error)
	UpdateQuantity(id uint, quantity float64) error
	Delete(id uint) error
}

// DeductionHistoryRepository defines the contract for the append-only ledger
type DeductionHistoryRepository interface {
	Append(record *DeductionRecord) error
	CountNegativeBySale(saleID uint) (int64, error)
}

// AggregateRepository defines the contract for per-product aggregates
type AggregateRepository interface {
	Upsert(aggregate *InventoryAggregate) error
	FindByProductID(productID uint) (*InventoryAggregate, error)
}
