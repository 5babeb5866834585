package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/caterstock/billing/internal/inventory/domain"
)

// GormInventoryRepository implements the batch, ledger and aggregate
// contracts on one GORM handle. Construct it with the transaction handle to
// scope all statements to the enclosing unit of work.
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.InventoryBatch{},
		&domain.DeductionRecord{},
		&domain.InventoryAggregate{},
	)
}

// FindByLabel returns the oldest live batch with stock matching the exact
// label, or (nil, nil) when none matches. Merged batches are never
// candidates; their stock lives on in the batch they were merged into.
func (r *GormInventoryRepository) FindByLabel(productID uint, label string) (*domain.InventoryBatch, error) {
	var batch domain.InventoryBatch
	err := r.db.Where("product_id = ? AND label = ? AND quantity > 0 AND status <> ?", productID, label, domain.BatchStatusMerged).
		Order("created_at ASC").
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindOldestWithStock returns the oldest-created live batch with positive
// quantity for the product regardless of label, or (nil, nil) when the
// product has no stock at all.
func (r *GormInventoryRepository) FindOldestWithStock(productID uint) (*domain.InventoryBatch, error) {
	var batch domain.InventoryBatch
	err := r.db.Where("product_id = ? AND quantity > 0 AND status <> ?", productID, domain.BatchStatusMerged).
		Order("created_at ASC").
		First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *GormInventoryRepository) FindByID(id uint) (*domain.InventoryBatch, error) {
	var batch domain.InventoryBatch
	err := r.db.First(&batch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindLiveByProduct returns every non-merged batch with stock, the basis for
// aggregate recomputation.
func (r *GormInventoryRepository) FindLiveByProduct(productID uint) ([]domain.InventoryBatch, error) {
	var batches []domain.InventoryBatch
	err := r.db.Where("product_id = ? AND status <> ? AND quantity > 0", productID, domain.BatchStatusMerged).
		Order("created_at ASC").
		Find(&batches).Error
	return batches, err
}

// SumAvailable sums positive-quantity live batches for the product,
// optionally filtered to one batch label. The same non-merged definition the
// aggregate uses, so the pre-check and the snapshot agree on what counts as
// stock. A product with no batches sums to zero.
func (r *GormInventoryRepository) SumAvailable(productID uint, label string) (float64, error) {
	query := r.db.Model(&domain.InventoryBatch{}).
		Where("product_id = ? AND quantity > 0 AND status <> ?", productID, domain.BatchStatusMerged)
	if label != "" {
		query = query.Where("label = ?", label)
	}

	var total float64
	err := query.Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	return total, err
}

func (r *GormInventoryRepository) UpdateQuantity(id uint, quantity float64) error {
	return r.db.Model(&domain.InventoryBatch{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

// Delete removes the batch row entirely. Batches have no soft delete.
func (r *GormInventoryRepository) Delete(id uint) error {
	return r.db.Delete(&domain.InventoryBatch{}, id).Error
}

func (r *GormInventoryRepository) Append(record *domain.DeductionRecord) error {
	return r.db.Create(record).Error
}

// CountNegativeBySale counts deduction rows whose note references the sale.
// The trailing separator keeps "Sale ID: 4" from matching sale 42.
func (r *GormInventoryRepository) CountNegativeBySale(saleID uint) (int64, error) {
	var count int64
	pattern := fmt.Sprintf("%%Sale ID: %d |%%", saleID)
	err := r.db.Model(&domain.DeductionRecord{}).
		Where("quantity < 0 AND note LIKE ?", pattern).
		Count(&count).Error
	return count, err
}

// Upsert writes the aggregate whole, replacing any previous snapshot for the
// product.
func (r *GormInventoryRepository) Upsert(aggregate *domain.InventoryAggregate) error {
	aggregate.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_quantity", "total_value", "average_cost", "updated_at"}),
	}).Create(aggregate).Error
}

func (r *GormInventoryRepository) FindByProductID(productID uint) (*domain.InventoryAggregate, error) {
	var aggregate domain.InventoryAggregate
	err := r.db.Where("product_id = ?", productID).First(&aggregate).Error
	if err != nil {
		return nil, err
	}
	return &aggregate, nil
}
