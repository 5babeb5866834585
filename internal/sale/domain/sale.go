package domain

import (
	"time"

	"gorm.io/gorm"
)

// Payment statuses
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Payment methods (closed enumeration; unknown input folds to cash)
const (
	PaymentMethodCash          = "cash"
	PaymentMethodCard          = "card"
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodMobileBanking = "mobile_banking"
	PaymentMethodCheque        = "cheque"
)

// Payment options
const (
	PaymentOptionFull   = "full"
	PaymentOptionHalf   = "half"
	PaymentOptionCustom = "custom"
	PaymentOptionLater  = "later"
)

// Charge types. "discount" is accepted on input and normalized to fixed or
// percentage via its value_type before persisting.
const (
	ChargeTypeFixed      = "fixed"
	ChargeTypePercentage = "percentage"
	ChargeTypeDiscount   = "discount"
)

// Sale represents one wholesale bill issued to a caterer. It owns its line
// items, charges and payments; deleting a sale cascades to them.
type Sale struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	CatererID         uint           `json:"caterer_id" gorm:"not null;index"`
	BillNumber        string         `json:"bill_number" gorm:"not null;uniqueIndex"`
	SellDate          time.Time      `json:"sell_date"`
	SubTotal          float64        `json:"sub_total"`
	TaxTotal          float64        `json:"tax_total"`
	ItemsTotal        float64        `json:"items_total"`
	OtherChargesTotal float64        `json:"other_charges_total"`
	GrandTotal        float64        `json:"grand_total"`
	PaymentStatus     string         `json:"payment_status" gorm:"default:'pending'"` // pending, partial, paid
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	Items    []SaleLineItem `json:"items,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Charges  []SaleCharge   `json:"charges,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Payments []SalePayment  `json:"payments,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (Sale) TableName() string {
	return "sales"
}

// SaleLineItem is one row per sold product or per mix component. A composite
// group has exactly one parent-null header row and at least one child row
// sharing its group id; non-composite rows have neither.
type SaleLineItem struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	SaleID         uint      `json:"sale_id" gorm:"not null;index"`
	ProductID      *uint     `json:"product_id" gorm:"index"` // nil for a mix header
	Name           string    `json:"name"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	Rate           float64   `json:"rate"`
	TaxPercent     float64   `json:"tax_percent"`
	TaxAmount      float64   `json:"tax_amount"`
	Amount         float64   `json:"amount"`
	BatchLabel     string    `json:"batch_label"`
	IsComposite    bool      `json:"is_composite"`
	CompositeGroup *uint     `json:"composite_group" gorm:"index"`
	ParentLineID   *uint     `json:"parent_line_id" gorm:"index"`
	ComponentsRaw  string    `json:"-" gorm:"type:text"` // original mix payload, kept as backup
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name
func (SaleLineItem) TableName() string {
	return "sale_line_items"
}

// LineItemKind is the tagged variant over the self-referential line rows
type LineItemKind int

const (
	LineItemSimple LineItemKind = iota
	LineItemCompositeHeader
	LineItemCompositeComponent
)

// Kind classifies the row without probing nullable columns elsewhere
func (li SaleLineItem) Kind() LineItemKind {
	switch {
	case li.CompositeGroup != nil && li.ParentLineID == nil:
		return LineItemCompositeHeader
	case li.CompositeGroup != nil:
		return LineItemCompositeComponent
	default:
		return LineItemSimple
	}
}

// SaleCharge is one other-charge row on a bill
type SaleCharge struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SaleID     uint      `json:"sale_id" gorm:"not null;index"`
	Name       string    `json:"name"`
	ChargeType string    `json:"charge_type"` // fixed, percentage
	Value      float64   `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name
func (SaleCharge) TableName() string {
	return "sale_charges"
}

// SalePayment is one payment row against a bill
type SalePayment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SaleID    uint      `json:"sale_id" gorm:"not null;index"`
	Amount    float64   `json:"amount"`
	Method    string    `json:"method"`
	PaidAt    time.Time `json:"paid_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (SalePayment) TableName() string {
	return "sale_payments"
}

// SaleRepository defines the contract for sale data access
type SaleRepository interface {
	Create(sale *Sale) error
	CreateLineItem(item *SaleLineItem) error
	CreateCharge(charge *SaleCharge) error
	CreatePayment(payment *SalePayment) error
	SumPayments(saleID uint) (float64, error)
	UpdatePaymentStatus(saleID uint, status string) error
	FindByID(id uint) (*Sale, error)
	FindByBillNumber(billNumber string) (*Sale, error)
	FindAll(limit, offset int) ([]Sale, error)
}
