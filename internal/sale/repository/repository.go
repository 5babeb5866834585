package repository

import (
	"gorm.io/gorm"

	"github.com/caterstock/billing/internal/sale/domain"
)

type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&domain.Sale{},
		&domain.SaleLineItem{},
		&domain.SaleCharge{},
		&domain.SalePayment{},
	)
}

func (r *GormSaleRepository) Create(sale *domain.Sale) error {
	return r.db.Create(sale).Error
}

func (r *GormSaleRepository) CreateLineItem(item *domain.SaleLineItem) error {
	return r.db.Create(item).Error
}

func (r *GormSaleRepository) CreateCharge(charge *domain.SaleCharge) error {
	return r.db.Create(charge).Error
}

func (r *GormSaleRepository) CreatePayment(payment *domain.SalePayment) error {
	return r.db.Create(payment).Error
}

func (r *GormSaleRepository) SumPayments(saleID uint) (float64, error) {
	var total float64
	err := r.db.Model(&domain.SalePayment{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (r *GormSaleRepository) UpdatePaymentStatus(saleID uint, status string) error {
	return r.db.Model(&domain.Sale{}).
		Where("id = ?", saleID).
		Update("payment_status", status).Error
}

func (r *GormSaleRepository) FindByID(id uint) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.Preload("Items").Preload("Charges").Preload("Payments").
		First(&sale, id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *GormSaleRepository) FindByBillNumber(billNumber string) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.Where("bill_number = ?", billNumber).First(&sale).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *GormSaleRepository) FindAll(limit, offset int) ([]domain.Sale, error) {
	var sales []domain.Sale
	err := r.db.Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}
